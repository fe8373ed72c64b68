package config

import "strings"

// RelayConfig controls how chat messages are recognised as commands.
type RelayConfig struct {
	Trigger    string `env:"RELAY_TRIGGER" yaml:"trigger" default:"?"`
	IgnoreBots bool   `env:"RELAY_IGNORE_BOTS" yaml:"ignore_bots" default:"false"`
}

// Validate requires a non-blank trigger without surrounding whitespace.
func (c RelayConfig) Validate() error {
	if c.Trigger == "" || strings.TrimSpace(c.Trigger) != c.Trigger {
		return invalid("relay_trigger", "must be non-empty without surrounding whitespace, got %q", c.Trigger)
	}
	return nil
}
