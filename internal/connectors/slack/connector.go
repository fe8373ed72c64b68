// Package slack provides the Slack Socket Mode connector.
package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/lewisedginton/gemini_relay_bot/internal/connectors"
	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

const platform = "slack"

// messagePoster is the part of *slack.Client used to reply.
type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// acker is the part of *socketmode.Client used to acknowledge envelopes.
type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// unescapeText reverses the entity escaping Slack applies to message text.
var unescapeText = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&").Replace

// Connector represents the Slack Socket Mode connector
type Connector struct {
	client     *slack.Client
	socketMode *socketmode.Client
	handler    connectors.MessageHandler
	commands   *CommandRegistry
	trigger    string
	log        logger.Logger
	botUserID  string
	connected  atomic.Bool
	inflight   sync.WaitGroup
}

var _ connectors.Connector = (*Connector)(nil)

// Config holds configuration for the Slack connector
type Config struct {
	BotToken string // xoxb-*
	AppToken string // xapp-*
	Debug    bool
	Trigger  string
}

// NewConnector creates a new Slack connector
func NewConnector(config Config, handler connectors.MessageHandler, log logger.Logger) (*Connector, error) {
	if !strings.HasPrefix(config.BotToken, "xoxb-") {
		return nil, fmt.Errorf("invalid bot token format, expected xoxb-*")
	}
	if !strings.HasPrefix(config.AppToken, "xapp-") {
		return nil, fmt.Errorf("invalid app token format, expected xapp-*")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	client := slack.New(
		config.BotToken,
		slack.OptionAppLevelToken(config.AppToken),
		slack.OptionDebug(config.Debug),
	)
	socketMode := socketmode.New(client, socketmode.OptionDebug(config.Debug))

	c := &Connector{
		client:     client,
		socketMode: socketMode,
		handler:    handler,
		trigger:    config.Trigger,
		log:        log.WithFields(logger.PlatformField(platform)),
	}
	c.setupCommands()
	return c, nil
}

// Platform returns "slack".
func (c *Connector) Platform() string {
	return platform
}

// Connected reports whether the Socket Mode websocket is up.
func (c *Connector) Connected() bool {
	return c.connected.Load()
}

// Run resolves the bot identity and processes Socket Mode events until ctx is cancelled.
func (c *Connector) Run(ctx context.Context) error {
	auth, err := c.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	c.botUserID = auth.UserID
	c.log.Info(fmt.Sprintf("We have logged in as %s", auth.User),
		logger.BotIDField(auth.UserID),
		logger.StringField("team", auth.Team))

	runCtx, cancel := context.WithCancel(ctx)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		c.consumeEvents(runCtx)
	}()

	err = c.socketMode.RunContext(runCtx)
	cancel()
	<-consumed
	c.inflight.Wait()
	c.connected.Store(false)

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Connector) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-c.socketMode.Events:
			if !ok {
				return
			}
			c.handleEnvelope(ctx, envelope)
		}
	}
}

func (c *Connector) handleEnvelope(ctx context.Context, envelope socketmode.Event) {
	switch envelope.Type {
	case socketmode.EventTypeConnecting:
		c.log.Info("Connecting to Slack with Socket Mode")

	case socketmode.EventTypeConnectionError:
		c.connected.Store(false)
		c.log.Warn("Slack connection failed", logger.StringField("data", fmt.Sprintf("%v", envelope.Data)))

	case socketmode.EventTypeConnected:
		c.connected.Store(true)
		c.log.Info("Connected to Slack with Socket Mode")

	case socketmode.EventTypeDisconnect:
		c.connected.Store(false)
		c.log.Warn("Slack Socket Mode disconnected")

	case socketmode.EventTypeEventsAPI:
		c.relayEvent(ctx, c.socketMode, c.client, envelope)

	case socketmode.EventTypeSlashCommand:
		c.handleSlashCommand(envelope)

	case socketmode.EventTypeInteractive:
		if envelope.Request != nil {
			c.socketMode.Ack(*envelope.Request)
		}

	default:
		c.log.Debug("Unhandled socket mode event", logger.StringField("type", string(envelope.Type)))
	}
}

// relayEvent acks an Events API envelope and relays it on its own goroutine.
// Slack redelivers envelopes left unacked for three seconds, so the ack never
// waits for generation. Redeliveries are dropped.
func (c *Connector) relayEvent(ctx context.Context, ack acker, poster messagePoster, envelope socketmode.Event) {
	event, ok := envelope.Data.(slackevents.EventsAPIEvent)
	if !ok {
		c.log.Debug("Ignored malformed events API payload")
		return
	}
	if envelope.Request != nil {
		ack.Ack(*envelope.Request)
		if envelope.Request.RetryAttempt > 0 {
			c.log.Debug("Dropping redelivered event",
				logger.StringField("envelope_id", envelope.Request.EnvelopeID),
				logger.IntField("retry_attempt", envelope.Request.RetryAttempt))
			return
		}
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.handleEvent(ctx, poster, event)
	}()
}

// handleEvent relays channel and DM messages. Returns the relay outcome for
// message events and OutcomeIgnored for everything else.
func (c *Connector) handleEvent(ctx context.Context, poster messagePoster, event slackevents.EventsAPIEvent) relay.Outcome {
	if event.Type != slackevents.CallbackEvent {
		return relay.OutcomeIgnored
	}
	ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return relay.OutcomeIgnored
	}
	// Edits, deletions and joins carry a subtype; only plain posts are commands.
	if ev.SubType != "" && ev.SubType != "bot_message" {
		return relay.OutcomeIgnored
	}

	return c.handler.Handle(ctx, platform, c.botUserID, relay.Message{
		AuthorID:    ev.User,
		AuthorIsBot: ev.BotID != "" || ev.SubType == "bot_message",
		Content:     unescapeText(ev.Text),
		Channel:     &channel{id: ev.Channel, threadTS: ev.ThreadTimeStamp, poster: poster},
	})
}

// channel replies into the Slack conversation a message came from, keeping
// thread replies in their thread.
type channel struct {
	id       string
	threadTS string
	poster   messagePoster
}

func (ch *channel) ID() string {
	return ch.id
}

func (ch *channel) Send(ctx context.Context, text string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if ch.threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(ch.threadTS))
	}
	if _, _, err := ch.poster.PostMessageContext(ctx, ch.id, opts...); err != nil {
		return fmt.Errorf("slack post to %s: %w", ch.id, err)
	}
	return nil
}
