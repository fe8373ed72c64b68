// Package connectors defines what the application expects from a chat platform adapter.
package connectors

import (
	"context"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
)

// Connector is a long-running chat platform session.
type Connector interface {
	// Platform names the chat platform, e.g. "discord".
	Platform() string
	// Run connects and blocks until ctx is cancelled or the session fails.
	Run(ctx context.Context) error
	// Connected reports whether the session is currently established.
	Connected() bool
}

// MessageHandler processes one inbound message. *relay.Handler satisfies it.
type MessageHandler interface {
	Handle(ctx context.Context, platform, botID string, msg relay.Message) relay.Outcome
}
