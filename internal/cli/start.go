package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/gemini_relay_bot/internal/app"
	appconfig "github.com/lewisedginton/gemini_relay_bot/internal/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// StartCommand runs the bot until SIGINT or SIGTERM.
func StartCommand() *cli.Command {
	return &cli.Command{
		Name:   "start",
		Usage:  "Connect to the configured chat platforms and relay messages",
		Action: startAction,
	}
}

func startAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := appconfig.Load(ctx.String("config-file"))
	if err != nil {
		log.Error("Failed to load configuration", logger.ErrorField(err))
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// A config file may set logging without the matching flags or env vars.
	if !ctx.IsSet("log-level") && !ctx.IsSet("log-format") {
		lc := cfg.LoggerConfig()
		lc.Output = ctx.App.ErrWriter
		log = logger.NewLogger(lc)
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting relay bot", logger.StringField("version", ctx.App.Version))
	if err := app.New(cfg, log).Run(runCtx); err != nil {
		return fmt.Errorf("relay bot stopped: %w", err)
	}
	log.Info("Relay bot stopped")
	return nil
}
