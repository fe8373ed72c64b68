// Package discord connects the relay handler to a Discord bot account.
package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/lewisedginton/gemini_relay_bot/internal/connectors"
	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

const platform = "discord"

// Intents requested at login. MessageContent is privileged and must be
// enabled for the application in the developer portal.
const Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

// messageSender is the part of *discordgo.Session used to reply.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config holds configuration for the Discord connector
type Config struct {
	BotToken string
}

// Connector represents the Discord gateway connector
type Connector struct {
	token     string
	handler   connectors.MessageHandler
	log       logger.Logger
	connected atomic.Bool
}

var _ connectors.Connector = (*Connector)(nil)

// NewConnector creates a Discord connector. It does not connect until Run.
func NewConnector(cfg Config, handler connectors.MessageHandler, log logger.Logger) (*Connector, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	return &Connector{
		token:   cfg.BotToken,
		handler: handler,
		log:     log.WithFields(logger.PlatformField(platform)),
	}, nil
}

// Platform returns "discord".
func (c *Connector) Platform() string {
	return platform
}

// Connected reports whether the gateway session is up.
func (c *Connector) Connected() bool {
	return c.connected.Load()
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (c *Connector) Run(ctx context.Context) error {
	session, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = Intents

	session.AddHandler(c.onReady)
	session.AddHandler(c.onResumed)
	session.AddHandler(c.onDisconnect)
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		c.onMessageCreate(ctx, s, m)
	})

	c.log.Info("Connecting to Discord gateway")
	if err := session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}

	<-ctx.Done()
	c.log.Info("Disconnecting from Discord")
	c.connected.Store(false)
	return session.Close()
}

func (c *Connector) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.connected.Store(true)
	if r.User == nil {
		c.log.Info("We have logged in")
		return
	}
	c.log.Info(fmt.Sprintf("We have logged in as %s", r.User.String()),
		logger.BotIDField(r.User.ID))
}

// onResumed marks the connector up again after a reconnect, where the
// gateway sends RESUMED instead of READY.
func (c *Connector) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	c.connected.Store(true)
	c.log.Info("Discord gateway session resumed")
}

func (c *Connector) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	c.connected.Store(false)
	c.log.Warn("Discord gateway disconnected")
}

func (c *Connector) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State == nil || s.State.User == nil {
		c.log.Debug("Dropping message received before bot identity is known")
		return
	}
	c.dispatch(ctx, s, s.State.User.ID, m.Message)
}

// dispatch converts a gateway message and hands it to the relay handler.
func (c *Connector) dispatch(ctx context.Context, sender messageSender, botID string, m *discordgo.Message) relay.Outcome {
	if m == nil || m.Author == nil {
		return relay.OutcomeIgnored
	}

	return c.handler.Handle(ctx, platform, botID, relay.Message{
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
		Channel:     &channel{id: m.ChannelID, sender: sender},
	})
}

// channel replies into the Discord channel a message came from.
type channel struct {
	id     string
	sender messageSender
}

func (ch *channel) ID() string {
	return ch.id
}

func (ch *channel) Send(_ context.Context, text string) error {
	if _, err := ch.sender.ChannelMessageSend(ch.id, text); err != nil {
		return fmt.Errorf("discord send to %s: %w", ch.id, err)
	}
	return nil
}
