// Package cli defines the relay-bot command line.
package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

const serviceName = "gemini-relay-bot"

// NewApp builds the command line application. Running it without a
// subcommand starts the bot.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "relay-bot",
		Usage:   "Relay chat messages prefixed with a trigger to a generation API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Usage:   "Path to an optional YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Before: func(ctx *cli.Context) error {
			log := logger.NewLogger(logger.Config{
				Level:   logger.ParseLevel(ctx.String("log-level")),
				Format:  ctx.String("log-format"),
				Service: serviceName,
				Output:  ctx.App.ErrWriter,
			})
			ctx.App.Metadata = map[string]interface{}{
				"logger": log,
			}
			return nil
		},
		Action: startAction,
		Commands: []*cli.Command{
			StartCommand(),
			ConfigCommand(),
			HealthCommand(),
		},
	}
}

// getLogger retrieves the logger from the CLI context metadata
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata["logger"].(logger.Logger); ok {
			return log
		}
	}
	return logger.NewLogger(logger.Config{Level: logger.InfoLevel, Service: serviceName})
}
