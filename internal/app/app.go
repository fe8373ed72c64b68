// Package app assembles the relay bot from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lewisedginton/gemini_relay_bot/internal/config"
	"github.com/lewisedginton/gemini_relay_bot/internal/connectors"
	"github.com/lewisedginton/gemini_relay_bot/internal/connectors/discord"
	"github.com/lewisedginton/gemini_relay_bot/internal/connectors/slack"
	"github.com/lewisedginton/gemini_relay_bot/internal/connectors/telegram"
	"github.com/lewisedginton/gemini_relay_bot/internal/models"
	"github.com/lewisedginton/gemini_relay_bot/internal/monitoring"
	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/internal/server"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
	"github.com/lewisedginton/gemini_relay_bot/pkg/metrics"
	"github.com/lewisedginton/gemini_relay_bot/pkg/utils"
)

// GeneratorFactory builds the generation client.
type GeneratorFactory func(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (relay.Generator, error)

// ConnectorFactory builds the enabled chat connectors around handler.
type ConnectorFactory func(cfg *config.AppConfig, handler connectors.MessageHandler, log logger.Logger) ([]connectors.Connector, error)

// App owns the process lifecycle.
type App struct {
	cfg           *config.AppConfig
	log           logger.Logger
	newGenerator  GeneratorFactory
	newConnectors ConnectorFactory
}

// Option configures an App.
type Option func(*App)

// WithGeneratorFactory replaces the provider-backed generator.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(a *App) { a.newGenerator = f }
}

// WithConnectorFactory replaces the platform connectors.
func WithConnectorFactory(f ConnectorFactory) Option {
	return func(a *App) { a.newConnectors = f }
}

// New creates an App from a loaded configuration.
func New(cfg *config.AppConfig, log logger.Logger, opts ...Option) *App {
	a := &App{
		cfg:           cfg,
		log:           log,
		newGenerator:  models.New,
		newConnectors: NewConnectors,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run reports the token state, then runs every enabled connector until ctx is
// cancelled or one of them fails. Without any chat credentials it returns nil
// without connecting.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Discord.Enabled() {
		a.log.Info("Token loaded successfully")
	} else {
		a.log.Error("Failed to load Discord bot token")
	}

	if !a.cfg.HasConnector() {
		a.log.Debug("No chat platform credentials configured, not connecting")
		return nil
	}

	a.cfg.LogConfig(a.log)

	m := metrics.NewMetrics(a.cfg.Metrics.EnableHTTPMetrics, a.cfg.Metrics.EnableRelayMetrics, a.log)

	gen, err := a.newGenerator(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	m.AddCustomMetric(generatorInfo(gen, a.cfg.ModelName()))

	handler := relay.NewHandler(gen, a.log,
		relay.WithOptions(relay.Options{
			Trigger:    a.cfg.Relay.Trigger,
			IgnoreBots: a.cfg.Relay.IgnoreBots,
		}),
		relay.WithRecorder(m),
	)

	conns, err := a.newConnectors(a.cfg, handler, a.log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChans := make([]<-chan error, 0, len(conns)+2)
	for _, c := range conns {
		a.log.Info("Starting connector", logger.PlatformField(c.Platform()))
		errChans = append(errChans, utils.Go(ctx, func(ctx context.Context) error {
			err := c.Run(ctx)
			// Shutdown cancels ctx, and some SDKs report that as an error.
			if err == nil || (errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				return nil
			}
			return fmt.Errorf("%s connector: %w", c.Platform(), err)
		}))
	}

	if a.cfg.Ops.Enabled {
		checker := monitoring.NewHealthChecker(monitoring.Config{Logger: a.log, Connectors: conns})
		var opsMetrics *metrics.Metrics
		if !a.cfg.Metrics.ExposeMetrics {
			opsMetrics = m
		}
		errChans = append(errChans, utils.Go(ctx, server.New(a.cfg.Ops, checker, opsMetrics, a.log).Run))
	}
	if a.cfg.Metrics.ExposeMetrics {
		errChans = append(errChans, utils.Go(ctx, func(ctx context.Context) error {
			return m.Listen(ctx, a.cfg.Metrics.Port)
		}))
	}

	var result error
	for err := range utils.MergeErrorChans(errChans...) {
		a.log.Error("Component stopped with error", logger.ErrorField(err))
		result = errors.Join(result, err)
		cancel()
	}

	a.log.Info("All connectors stopped")
	return result
}

// generatorInfo is a constant 1 gauge labelled with the active provider and model.
func generatorInfo(gen relay.Generator, model string) prometheus.Collector {
	if mg, ok := gen.(models.Generator); ok {
		model = mg.Model()
	}
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "relay",
		Name:      "generator_info",
		Help:      "Generation provider and model in use",
	}, []string{"provider", "model"})
	info.WithLabelValues(gen.Name(), model).Set(1)
	return info
}

// NewConnectors builds a connector for every platform that has credentials.
func NewConnectors(cfg *config.AppConfig, handler connectors.MessageHandler, log logger.Logger) ([]connectors.Connector, error) {
	var conns []connectors.Connector

	if cfg.Discord.Enabled() {
		c, err := discord.NewConnector(discord.Config{BotToken: cfg.Discord.BotToken}, handler, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Discord connector: %w", err)
		}
		conns = append(conns, c)
	}

	if cfg.Telegram.Enabled() {
		c, err := telegram.NewConnector(telegram.Config{
			BotToken: cfg.Telegram.BotToken,
			Debug:    cfg.Telegram.Debug,
			Trigger:  cfg.Relay.Trigger,
		}, handler, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Telegram connector: %w", err)
		}
		conns = append(conns, c)
	} else {
		log.Debug("Telegram connector disabled (missing TELEGRAM_BOT_TOKEN)")
	}

	if cfg.Slack.Enabled() {
		c, err := slack.NewConnector(slack.Config{
			BotToken: cfg.Slack.BotToken,
			AppToken: cfg.Slack.AppToken,
			Debug:    cfg.Slack.Debug,
			Trigger:  cfg.Relay.Trigger,
		}, handler, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Slack connector: %w", err)
		}
		conns = append(conns, c)
	} else {
		log.Debug("Slack connector disabled (missing SLACK_BOT_TOKEN or SLACK_APP_TOKEN)")
	}

	return conns, nil
}
