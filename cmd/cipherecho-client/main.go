// Kunhua Huang 2026

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ecstasoy/cipherecho/pkg/cli"
	"github.com/ecstasoy/cipherecho/pkg/client"
	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	rootCmd := cli.NewClientCommand(startClient)
	rootCmd.SetOut(os.Stdout)

	if err := cli.Execute(context.Background(), rootCmd, argv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return 0
}

func startClient(ctx context.Context, args cli.ClientArgs) error {
	log := logger.New(os.Stdout, logger.ParseLevel(args.Config.LogLevel), "")
	logger.SetGlobal(log)

	cfg := args.Config
	session, err := client.NewSession(args.Key.String(),
		client.WithLogger(log),
		client.WithRounds(cfg.Rounds),
		client.WithRoundDelay(cfg.RoundDelay.Duration),
		client.WithTransportOptions(
			transport.WithDialTimeout(cfg.DialTimeout.Duration),
			transport.WithReadTimeout(cfg.ReadTimeout.Duration),
			transport.WithWriteTimeout(cfg.WriteTimeout.Duration),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	if err := session.Connect(ctx, args.Addr()); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", args.Addr(), err)
	}

	// Failed rounds are logged by the session and do not change the exit status.
	if _, err := session.Run(ctx, args.Message); err != nil {
		log.Warnf("Session ended early: %v", err)
	}
	return nil
}
