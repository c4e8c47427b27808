package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aura-studio/kubeless/config"
	"github.com/aura-studio/kubeless/function"
	"github.com/aura-studio/kubeless/http/client"
	"github.com/aura-studio/kubeless/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const (
	flagConfig       = "config"
	flagEnvFile      = "env-file"
	flagLogLevel     = "log-level"
	flagLogFormat    = "log-format"
	flagMode         = "mode"
	flagDebug        = "debug"
	flagStrictPanics = "strict-panics"
	flagURL          = "url"
	flagTimeout      = "timeout"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagConfig,
		Usage:   "path to a YAML config file",
		Aliases: []string{"c"},
		Sources: cli.EnvVars("KUBELESS_CONFIG"),
	}
}

func envFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagEnvFile,
		Usage: "dotenv file loaded before reading the environment",
		Value: ".env",
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagLogLevel,
		Usage:   "debug, info, warn or error",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func logFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagLogFormat,
		Usage:   "text or json",
		Sources: cli.EnvVars("LOG_FORMAT"),
	}
}

func modeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagMode,
		Usage:   "http or lambda",
		Sources: cli.EnvVars("FUNC_MODE"),
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    flagDebug,
		Usage:   "enable the /_/ debug route",
		Sources: cli.EnvVars("FUNC_DEBUG"),
	}
}

func strictPanicsFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  flagStrictPanics,
		Usage: "let a panicking function take the request down instead of answering 500",
	}
}

// NewCommand returns the root command of a function binary. Without a
// subcommand it serves the function named by FUNC_HANDLER.
func NewCommand(fns ...function.Function) *cli.Command {
	return &cli.Command{
		Name:  "kubeless",
		Usage: "serve a function",
		Flags: []cli.Flag{
			configFlag(),
			envFileFlag(),
			logLevelFlag(),
			logFormatFlag(),
			modeFlag(),
			debugFlag(),
			strictPanicsFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Run(ctx, cfg, logger, fns...)
		},
		Commands: []*cli.Command{
			callCommand(),
			healthzCommand(),
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(cmd.String(flagEnvFile)); err != nil {
		return nil, err
	}

	var fileOpt config.Option
	var err error
	if path := cmd.String(flagConfig); path != "" {
		fileOpt, err = config.WithConfigFile(path)
	} else {
		fileOpt, err = config.WithDefaultConfigFile()
	}
	if err != nil {
		return nil, err
	}

	return config.LoadWithOverrides(os.LookupEnv, []config.Option{fileOpt}, flagOptions(cmd))
}

// flagOptions turns the flags given on the command line into the last
// configuration layer. Unset flags leave lower layers alone.
func flagOptions(cmd *cli.Command) []config.Option {
	opts := []config.Option{
		config.WithLog(cmd.String(flagLogLevel), cmd.String(flagLogFormat)),
		config.WithMode(cmd.String(flagMode)),
	}
	if cmd.IsSet(flagDebug) {
		opts = append(opts, config.WithDebug(cmd.Bool(flagDebug)))
	}
	if cmd.IsSet(flagStrictPanics) {
		opts = append(opts, config.WithStrictPanics(cmd.Bool(flagStrictPanics)))
	}
	return opts
}

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagURL,
		Usage:   "base URL of the running function",
		Value:   "http://localhost:8080",
		Aliases: []string{"u"},
	}
}

func timeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    flagTimeout,
		Usage:   "example: 30s, 1m",
		Aliases: []string{"t"},
		Value:   30 * time.Second,
	}
}

func callCommand() *cli.Command {
	return &cli.Command{
		Name:  "call",
		Usage: "invoke a running function and print its response",
		Flags: []cli.Flag{
			urlFlag(),
			timeoutFlag(),
			&cli.StringFlag{
				Name:    "data",
				Usage:   "request body, only sent with POST",
				Aliases: []string{"d"},
			},
			&cli.StringFlag{
				Name:    "method",
				Usage:   "HTTP method",
				Aliases: []string{"X"},
				Value:   http.MethodPost,
			},
			&cli.StringFlag{Name: "event-id"},
			&cli.StringFlag{Name: "event-type"},
			&cli.StringFlag{Name: "event-time"},
			&cli.StringFlag{Name: "event-namespace"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := client.NewClient(
				client.WithBaseURL(cmd.String(flagURL)),
				client.WithTimeout(cmd.Duration(flagTimeout)),
			)
			resp, err := c.Invoke(ctx, client.Request{
				Method:         cmd.String("method"),
				Data:           []byte(cmd.String("data")),
				EventID:        cmd.String("event-id"),
				EventType:      cmd.String("event-type"),
				EventTime:      cmd.String("event-time"),
				EventNamespace: cmd.String("event-namespace"),
			})
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("call failed with status %d: %s", resp.StatusCode, resp.Body)
			}
			fmt.Fprintln(cmd.Root().Writer, string(resp.Body))
			return nil
		},
	}
}

func healthzCommand() *cli.Command {
	return &cli.Command{
		Name:  "healthz",
		Usage: "probe a running function",
		Flags: []cli.Flag{
			urlFlag(),
			timeoutFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := client.NewClient(
				client.WithBaseURL(cmd.String(flagURL)),
				client.WithTimeout(cmd.Duration(flagTimeout)),
			)
			if err := c.Healthz(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, "OK")
			return nil
		},
	}
}

// Main runs NewCommand with the process arguments and exits non-zero on
// failure.
func Main(fns ...function.Function) {
	if err := NewCommand(fns...).Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("function runtime failed")
	}
}
