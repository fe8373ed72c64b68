package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/lewisedginton/gemini_relay_bot/internal/connectors"
	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

const platform = "telegram"

// messageSender is the part of *bot.Bot used to reply.
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Connector represents the Telegram connector
type Connector struct {
	token     string
	debug     bool
	trigger   string
	handler   connectors.MessageHandler
	commands  *CommandRegistry
	log       logger.Logger
	botID     string
	connected atomic.Bool
}

var _ connectors.Connector = (*Connector)(nil)

// Config holds configuration for the Telegram connector
type Config struct {
	BotToken string // Bot token from @BotFather
	Debug    bool   // Enable debug logging
	// Trigger is quoted in the /help reply.
	Trigger string
}

// NewConnector creates a Telegram connector. It does not contact Telegram until Run.
func NewConnector(config Config, handler connectors.MessageHandler, log logger.Logger) (*Connector, error) {
	if config.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	c := &Connector{
		token:   config.BotToken,
		debug:   config.Debug,
		trigger: config.Trigger,
		handler: handler,
		log:     log.WithFields(logger.PlatformField(platform)),
	}
	c.setupCommands()
	return c, nil
}

// Platform returns "telegram".
func (c *Connector) Platform() string {
	return platform
}

// Connected reports whether polling is active.
func (c *Connector) Connected() bool {
	return c.connected.Load()
}

// Run resolves the bot identity and polls for updates until ctx is cancelled.
func (c *Connector) Run(ctx context.Context) error {
	opts := []bot.Option{
		bot.WithDefaultHandler(c.handleUpdate),
	}
	if c.debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(c.token, opts...)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	c.botID = strconv.FormatInt(me.ID, 10)
	c.log.Info(fmt.Sprintf("We have logged in as @%s", me.Username), logger.BotIDField(c.botID))

	c.connected.Store(true)
	defer c.connected.Store(false)

	// Blocks until ctx is cancelled.
	b.Start(ctx)
	c.log.Info("Telegram polling stopped")
	return nil
}

func (c *Connector) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	c.dispatch(ctx, b, update)
}

// dispatch routes bot commands to the registry and everything else to the relay handler.
func (c *Connector) dispatch(ctx context.Context, sender messageSender, update *models.Update) relay.Outcome {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return relay.OutcomeIgnored
	}
	msg := update.Message
	ch := &chat{id: msg.Chat.ID, sender: sender}

	if c.commands.IsCommand(msg.Text) {
		if reply, ok := c.commands.Handle(msg.Text); ok {
			if err := ch.Send(ctx, reply); err != nil {
				c.log.Error("Error sending command response", logger.ErrorField(err))
			}
			return relay.OutcomeInstructed
		}
	}

	return c.handler.Handle(ctx, platform, c.botID, relay.Message{
		AuthorID:    strconv.FormatInt(msg.From.ID, 10),
		AuthorIsBot: msg.From.IsBot,
		Content:     msg.Text,
		Channel:     ch,
	})
}

// chat replies into the Telegram chat a message came from.
type chat struct {
	id     int64
	sender messageSender
}

func (ch *chat) ID() string {
	return strconv.FormatInt(ch.id, 10)
}

func (ch *chat) Send(ctx context.Context, text string) error {
	_, err := ch.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: ch.id,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram send to %d: %w", ch.id, err)
	}
	return nil
}
