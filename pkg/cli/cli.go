// Kunhua Huang 2026

// Package cli builds the cobra commands of the two binaries. Values come from
// config.Default, then an optional --config file, then flags and positional
// arguments.
package cli

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ecstasoy/cipherecho/pkg/cipher"
	"github.com/ecstasoy/cipherecho/pkg/config"
	"github.com/ecstasoy/cipherecho/pkg/netaddr"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

type ClientArgs struct {
	Message string
	Key     cipher.Key
	IP      net.IP
	Port    uint16
	Config  config.ClientConfig
}

func (a ClientArgs) Addr() string {
	return netaddr.HostPort(a.IP, a.Port)
}

type ServerArgs struct {
	IP     net.IP
	Port   uint16
	Config config.ServerConfig
}

func (a ServerArgs) Addr() string {
	return netaddr.HostPort(a.IP, a.Port)
}

type ClientAction func(ctx context.Context, args ClientArgs) error

type ServerAction func(ctx context.Context, args ServerArgs) error

// NewClientCommand returns the cipherecho-client command. action runs once
// the arguments are validated; its error is returned from Execute.
func NewClientCommand(action ClientAction) *cobra.Command {
	var (
		configFile string
		rounds     int
		delay      time.Duration
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "cipherecho-client <message> <key> <address> <port>",
		Short: "Send a keyed message to a cipherecho server",
		Long: `Encodes <message> with <key>, sends it to the server at <address>:<port>
and prints each reply. The exchange is repeated --rounds times.`,
		Args: wrapArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			out := ClientArgs{Config: cfg.Client}

			flags := cmd.Flags()
			if flags.Changed("rounds") {
				if rounds < 0 {
					return protocol.Wrap(protocol.ErrorCodeArgument, nil, "--rounds must not be negative")
				}
				out.Config.Rounds = rounds
			}
			if flags.Changed("delay") {
				if delay < 0 {
					return protocol.Wrap(protocol.ErrorCodeArgument, nil, "--delay must not be negative")
				}
				out.Config.RoundDelay = config.Duration{Duration: delay}
			}
			if flags.Changed("log-level") {
				out.Config.LogLevel = logLevel
			}

			out.Message = args[0]
			if out.Key, err = cipher.NewKey(args[1]); err != nil {
				return protocol.Wrap(protocol.ErrorCodeArgument, err, "key must contain only letters")
			}
			if out.IP, err = netaddr.CheckValidIP(args[2]); err != nil {
				return err
			}
			if out.Port, err = netaddr.ParsePort(args[3]); err != nil {
				return err
			}

			return action(cmd.Context(), out)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "number of exchanges")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between exchanges")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or none")

	return quiet(cmd)
}

// NewServerCommand returns the cipherecho-server command. With --discover
// the address comes from discover and only <port> is given.
func NewServerCommand(action ServerAction) *cobra.Command {
	return newServerCommand(action, netaddr.FindAddress)
}

func newServerCommand(action ServerAction, discover func() (net.IP, error)) *cobra.Command {
	var (
		configFile  string
		metrics     string
		grace       time.Duration
		logLevel    string
		useDiscover bool
	)

	cmd := &cobra.Command{
		Use:   "cipherecho-server <address> <port>",
		Short: "Serve cipherecho sessions",
		Long: `Accepts cipherecho clients on <address>:<port> and replies to every frame
with its decoded message. With --discover only <port> is given and the
address is the first non-loopback IPv4 address of the host.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if useDiscover {
				return wrapArgs(cobra.ExactArgs(1))(cmd, args)
			}
			return wrapArgs(cobra.ExactArgs(2))(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			out := ServerArgs{Config: cfg.Server}

			flags := cmd.Flags()
			if flags.Changed("metrics") {
				out.Config.MetricsAddress = metrics
			}
			if flags.Changed("grace") {
				if grace < 0 {
					return protocol.Wrap(protocol.ErrorCodeArgument, nil, "--grace must not be negative")
				}
				out.Config.GracePeriod = config.Duration{Duration: grace}
			}
			if flags.Changed("log-level") {
				out.Config.LogLevel = logLevel
			}

			if useDiscover {
				out.IP, err = discover()
			} else {
				out.IP, err = netaddr.CheckValidIP(args[0])
			}
			if err != nil {
				return err
			}
			if out.Port, err = netaddr.ParsePort(args[len(args)-1]); err != nil {
				return err
			}

			return action(cmd.Context(), out)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	cmd.Flags().StringVar(&metrics, "metrics", "", "serve prometheus metrics on this address")
	cmd.Flags().DurationVar(&grace, "grace", 0, "how long in-flight sessions may run after shutdown")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or none")
	cmd.Flags().BoolVar(&useDiscover, "discover", false, "listen on the first non-loopback IPv4 address")

	return quiet(cmd)
}

// ParseClientArgs runs the client command over args and returns what it
// validated. --help yields an ArgumentError wrapping pflag.ErrHelp.
func ParseClientArgs(args []string) (ClientArgs, error) {
	var got *ClientArgs
	cmd := NewClientCommand(func(_ context.Context, a ClientArgs) error {
		got = &a
		return nil
	})
	if err := execute(cmd, args); err != nil {
		return ClientArgs{}, err
	}
	if got == nil {
		return ClientArgs{}, protocol.Wrap(protocol.ErrorCodeArgument, pflag.ErrHelp, "%s", cmd.UseLine())
	}
	return *got, nil
}

func ParseServerArgs(args []string) (ServerArgs, error) {
	return parseServerArgs(args, netaddr.FindAddress)
}

func parseServerArgs(args []string, discover func() (net.IP, error)) (ServerArgs, error) {
	var got *ServerArgs
	cmd := newServerCommand(func(_ context.Context, a ServerArgs) error {
		got = &a
		return nil
	}, discover)
	if err := execute(cmd, args); err != nil {
		return ServerArgs{}, err
	}
	if got == nil {
		return ServerArgs{}, protocol.Wrap(protocol.ErrorCodeArgument, pflag.ErrHelp, "%s", cmd.UseLine())
	}
	return *got, nil
}

// ExitCode maps a startup error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Execute runs cmd over args with ctx. A nil args slice means no arguments,
// not os.Args.
func Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func execute(cmd *cobra.Command, args []string) error {
	cmd.SetOut(io.Discard)
	return Execute(context.Background(), cmd, args)
}

// quiet leaves error reporting to the caller and turns cobra's parse errors
// into ArgumentErrors.
func quiet(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetErr(io.Discard)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return protocol.Wrap(protocol.ErrorCodeArgument, err, "%s", c.UseLine())
	})
	return cmd
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return protocol.Wrap(protocol.ErrorCodeArgument, err, "%s", cmd.UseLine())
		}
		return nil
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, protocol.Wrap(protocol.ErrorCodeArgument, err, "load config")
	}
	return cfg, nil
}
