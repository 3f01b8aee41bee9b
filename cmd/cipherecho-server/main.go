// Kunhua Huang 2026

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ecstasoy/cipherecho/pkg/cli"
	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/server"
	"github.com/ecstasoy/cipherecho/pkg/shutdown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	rootCmd := cli.NewServerCommand(serve)
	rootCmd.SetOut(os.Stdout)

	if err := cli.Execute(context.Background(), rootCmd, argv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return 0
}

// serve runs until the first SIGINT or SIGTERM, then gives in-flight sessions
// the grace period. A second signal cuts the grace period short.
func serve(ctx context.Context, args cli.ServerArgs) error {
	log := logger.New(os.Stdout, logger.ParseLevel(args.Config.LogLevel), "")
	logger.SetGlobal(log)

	cfg := args.Config
	srv, err := server.NewServer(
		server.WithAddress(args.Addr()),
		server.WithTimeout(cfg.ReadTimeout.Duration, cfg.WriteTimeout.Duration),
		server.WithMaxConnections(cfg.MaxConnections),
		server.WithReusePort(cfg.ReusePort),
		server.WithFrameRate(cfg.FrameRate, cfg.FrameBurst),
		server.WithLogger(log),
	)
	if err != nil {
		return err
	}

	flag := shutdown.NewFlag()
	release := shutdown.InstallSignalHandler(flag, log)
	defer release()

	ctx, cancel := flag.Context(ctx)
	defer cancel()

	if err := srv.Listen(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.Serve(gctx)
	})

	if cfg.MetricsAddress != "" {
		metrics := newMetricsServer(cfg.MetricsAddress, log)
		g.Go(func() error {
			log.Infof("Metrics on http://%s/metrics", cfg.MetricsAddress)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			return metrics.Shutdown(sctx)
		})
	}

	serveErr := g.Wait()
	if serveErr != nil {
		log.Errorf("Server stopped: %v", serveErr)
	}

	grace := cfg.GracePeriod.Duration
	log.Infof("Waiting up to %s for %d active sessions", grace, srv.Stats().ActiveConnections)
	dctx, dcancel := context.WithTimeout(context.Background(), grace)
	defer dcancel()
	go func() {
		select {
		case <-flag.Forced():
			dcancel()
		case <-dctx.Done():
		}
	}()

	if err := srv.Shutdown(dctx); err != nil {
		log.Warnf("Sessions force-closed: %v", err)
	}

	log.Infof("Server stopped")
	return serveErr
}

func newMetricsServer(addr string, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: logger.StdLogger(log.WithPrefix("METRICS")),
	}))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.StdLogger(log.WithPrefix("HTTP")),
	}
}
