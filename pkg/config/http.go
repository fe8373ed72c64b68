package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// HTTPServerConfig holds settings for the operator HTTP server (health and metrics)
type HTTPServerConfig struct {
	// Enabled starts the operator HTTP server alongside the chat connectors
	Enabled bool `env:"OPS_ENABLED" yaml:"enabled" default:"false"`

	// Port is the TCP port for the HTTP server to listen on
	Port int `env:"OPS_PORT" yaml:"port" default:"8080"`

	// ReadTimeoutSeconds is the maximum duration for reading the entire request, including body
	ReadTimeoutSeconds int `env:"OPS_READ_TIMEOUT_SECONDS" yaml:"read_timeout_seconds" default:"15"`

	// WriteTimeoutSeconds is the maximum duration before timing out writes of the response
	WriteTimeoutSeconds int `env:"OPS_WRITE_TIMEOUT_SECONDS" yaml:"write_timeout_seconds" default:"15"`

	// IdleTimeoutSeconds is the maximum amount of time to wait for the next request
	IdleTimeoutSeconds int `env:"OPS_IDLE_TIMEOUT_SECONDS" yaml:"idle_timeout_seconds" default:"60"`

	// CORSAllowedOrigins enables read-only CORS for these origins. Empty disables CORS.
	CORSAllowedOrigins []string `env:"OPS_CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins"`
}

// Validate checks HTTPServerConfig for valid port range
func (h HTTPServerConfig) Validate() error {
	var result error
	if h.Port < 1 || h.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("ops port must be between 1-65535, got %d", h.Port))
	}
	return result
}

// Addr returns the listen address for the server
func (h HTTPServerConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// ReadTimeout returns the ReadTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) ReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the WriteTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the IdleTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) IdleTimeout() time.Duration {
	return time.Duration(h.IdleTimeoutSeconds) * time.Second
}
