package telegram

import (
	"strings"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
)

// CommandHandler produces the reply for a bot command.
type CommandHandler func(args string) string

// CommandRegistry manages bot command handlers
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

// IsCommand checks if a message is a command
func (r *CommandRegistry) IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// Handle runs the handler for text. ok is false for unregistered commands,
// which then flow through the relay like any other message.
func (r *CommandRegistry) Handle(text string) (reply string, ok bool) {
	parts := strings.SplitN(text, " ", 2)
	// Group chats address commands as /help@botname.
	command, _, _ := strings.Cut(parts[0], "@")

	handler, exists := r.handlers[command]
	if !exists {
		return "", false
	}

	var args string
	if len(parts) == 2 {
		args = parts[1]
	}
	return handler(args), true
}

// setupCommands initializes the command registry with all available commands
func (c *Connector) setupCommands() {
	usage := func(string) string { return relay.UsageText(c.trigger) }

	c.commands = NewCommandRegistry()
	c.commands.Register("/start", usage)
	c.commands.Register("/help", usage)
}
