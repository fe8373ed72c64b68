// Package monitoring wires connector state into health checks.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lewisedginton/gemini_relay_bot/internal/connectors"
	"github.com/lewisedginton/gemini_relay_bot/pkg/health"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// Config holds configuration for the health monitor
type Config struct {
	Logger           logger.Logger
	Connectors       []connectors.Connector
	Timeout          time.Duration
	FailureThreshold int
}

// NewHealthChecker builds the checker served on the ops endpoints.
// The bot is live while the process runs and ready while at least one
// chat connector holds a session.
func NewHealthChecker(cfg Config) *health.Checker {
	checker := health.New(
		health.WithLogger(cfg.Logger),
		health.WithTimeout(cfg.Timeout),
		health.WithFailureThreshold(cfg.FailureThreshold),
	)

	checker.AddLivenessCheck(health.NewCheckFunc("process", func(context.Context) error {
		return nil
	}))

	conns := cfg.Connectors
	checker.AddReadinessCheck(health.NewCheckFunc("connectors", func(context.Context) error {
		return anyConnected(conns)
	}))

	return checker
}

func anyConnected(conns []connectors.Connector) error {
	if len(conns) == 0 {
		return errors.New("no connectors configured")
	}

	down := make([]string, 0, len(conns))
	for _, c := range conns {
		if c.Connected() {
			return nil
		}
		down = append(down, c.Platform())
	}
	return fmt.Errorf("no connector connected (down: %s)", strings.Join(down, ", "))
}
