// Package relay turns inbound chat messages into at most one outbound reply.
//
// Decide holds the pure command logic and has no dependency on any chat SDK.
// Handler binds it to a Generator and to the message's Channel.
package relay

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTrigger marks a message as a command addressed to the bot.
const DefaultTrigger = "?"

// Channel is the destination an inbound message came from.
type Channel interface {
	ID() string
	Send(ctx context.Context, text string) error
}

// Message is one inbound chat event. It lives for a single Handle call.
type Message struct {
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Channel     Channel
}

// Options tune command detection.
type Options struct {
	// Trigger is the command prefix. Empty means DefaultTrigger.
	Trigger string
	// IgnoreBots drops messages from any bot account, not only our own.
	IgnoreBots bool
}

func (o Options) trigger() string {
	if o.Trigger == "" {
		return DefaultTrigger
	}
	return o.Trigger
}

// Action is what the handler should do with a message.
type Action int

const (
	ActionIgnore Action = iota
	ActionInstruct
	ActionGenerate
)

func (a Action) String() string {
	switch a {
	case ActionInstruct:
		return "instruct"
	case ActionGenerate:
		return "generate"
	default:
		return "ignore"
	}
}

// Decision is the result of Decide. Prompt is set only for ActionGenerate.
type Decision struct {
	Action Action
	Prompt string
}

// Decide classifies msg without side effects.
func Decide(botID string, msg Message, opts Options) Decision {
	if botID != "" && msg.AuthorID == botID {
		return Decision{Action: ActionIgnore}
	}
	if opts.IgnoreBots && msg.AuthorIsBot {
		return Decision{Action: ActionIgnore}
	}

	trigger := opts.trigger()
	if !strings.HasPrefix(msg.Content, trigger) {
		return Decision{Action: ActionIgnore}
	}

	payload := strings.TrimSpace(strings.TrimPrefix(msg.Content, trigger))
	if payload == "" {
		return Decision{Action: ActionInstruct}
	}
	return Decision{Action: ActionGenerate, Prompt: payload}
}

// InstructionText is sent when a command carries no payload.
func InstructionText(trigger string) string {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	return fmt.Sprintf("Please provide a message after the %s command.", trigger)
}

// Failure describes why a generation call did not produce text.
type Failure struct {
	Description string
}

// Result is the outcome of one generation call: Text on success, Failure otherwise.
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Success wraps generated text.
func Success(text string) Result {
	return Result{Text: text}
}

// Failed wraps an error from a generation client.
func Failed(err error) Result {
	if err == nil {
		return Result{Failure: &Failure{Description: "unknown error"}}
	}
	return Result{Failure: &Failure{Description: err.Error()}}
}

// Failedf builds a failure from a format string.
func Failedf(format string, args ...any) Result {
	return Result{Failure: &Failure{Description: fmt.Sprintf(format, args...)}}
}

// FailureText is the diagnostic shown to the user and written to the log.
func FailureText(f *Failure) string {
	return "An error occurred: " + f.Description
}

// Generator sends a prompt to a generation API.
// Implementations report every error through Result instead of panicking.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) Result
}

// UsageText explains how to address the bot.
func UsageText(trigger string) string {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	return fmt.Sprintf("Start a message with %s followed by your question, for example: %swhat is a goroutine", trigger, trigger)
}
