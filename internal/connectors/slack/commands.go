package slack

import (
	"fmt"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// CommandHandler handles a specific slash command
type CommandHandler func(cmd slack.SlashCommand) string

// CommandRegistry manages slash command handlers
type CommandRegistry struct {
	handlers map[string]CommandHandler
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		handlers: make(map[string]CommandHandler),
	}
}

// Register adds a command handler to the registry
func (r *CommandRegistry) Register(command string, handler CommandHandler) {
	r.handlers[command] = handler
}

// Handle returns the ephemeral response payload for cmd.
func (r *CommandRegistry) Handle(cmd slack.SlashCommand) map[string]any {
	handler, exists := r.handlers[cmd.Command]
	if !exists {
		return map[string]any{
			"text": fmt.Sprintf("Unknown command: %s", cmd.Command),
		}
	}
	return map[string]any{
		"text": handler(cmd),
	}
}

// setupCommands initialises the command registry with all available commands
func (c *Connector) setupCommands() {
	c.commands = NewCommandRegistry()
	c.commands.Register("/help", func(slack.SlashCommand) string {
		return relay.UsageText(c.trigger)
	})
}

// handleSlashCommand answers slash commands in the acknowledgement.
func (c *Connector) handleSlashCommand(envelope socketmode.Event) {
	if envelope.Request == nil {
		return
	}

	cmd, ok := envelope.Data.(slack.SlashCommand)
	if !ok {
		c.log.Warn("Failed to parse slash command data", logger.StringField("data", fmt.Sprintf("%+v", envelope.Data)))
		c.socketMode.Ack(*envelope.Request)
		return
	}

	c.log.Info("Received slash command",
		logger.StringField("command", cmd.Command),
		logger.StringField("user_id", cmd.UserID),
		logger.ChannelField(cmd.ChannelID))

	c.socketMode.Ack(*envelope.Request, c.commands.Handle(cmd))
}
