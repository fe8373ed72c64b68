package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/gemini_relay_bot/internal/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// ConfigCommand returns a command for configuration operations
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Configuration operations",
		Subcommands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Load and validate configuration without connecting",
				Action: configValidateAction,
			},
		},
	}
}

func configValidateAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := appconfig.Load(ctx.String("config-file"))
	if err != nil {
		log.Error("Configuration validation failed", logger.ErrorField(err))
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	out := ctx.App.Writer
	fmt.Fprintln(out, "Configuration is valid")
	fmt.Fprintf(out, "  provider: %s (%s)\n", cfg.LLM.Normalized(), cfg.ModelName())
	fmt.Fprintf(out, "  trigger:  %q\n", cfg.Relay.Trigger)
	fmt.Fprintf(out, "  discord:  %t\n", cfg.Discord.Enabled())
	fmt.Fprintf(out, "  telegram: %t\n", cfg.Telegram.Enabled())
	fmt.Fprintf(out, "  slack:    %t\n", cfg.Slack.Enabled())
	if !cfg.Discord.Enabled() {
		fmt.Fprintln(out, "warning: DISCORD_BOT_TOKEN is not set, the bot will not connect to Discord")
	}
	return nil
}
