// Package httpmiddleware assembles the chi middleware stack used by the ops server.
package httpmiddleware

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// Config holds configuration for HTTP middleware application.
type Config struct {
	Logger     logger.Logger
	QuietPaths []string // logged at debug level
	CORS       *CORSConfig
	Security   *secure.Options
	Timeout    time.Duration

	EnableCorrelationID bool
	EnableLogging       bool
	EnableRecovery      bool
	EnableSecurity      bool
	EnableHeartbeat     bool // answers /ping
	EnableRealIP        bool
	EnableTimeout       bool
}

// DefaultConfig returns the middleware configuration for the ops server.
// Logging needs a Logger; CORS needs origins.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,

		EnableCorrelationID: true,
		EnableRecovery:      true,
		EnableSecurity:      true,
		EnableHeartbeat:     true,
		EnableRealIP:        true,
		EnableTimeout:       true,
	}
}

// ApplyToRouter applies the configured middleware to a Chi router.
// The first middleware applied is the outermost layer.
func ApplyToRouter(router chi.Router, config Config) {
	if config.EnableCorrelationID {
		router.Use(CorrelationID())
	}
	if config.EnableSecurity {
		router.Use(Security(config.Security))
	}
	if config.EnableRealIP {
		router.Use(middleware.RealIP)
	}
	if config.EnableLogging && config.Logger != nil {
		router.Use(NewHTTPLogger(config.Logger, config.QuietPaths...).Middleware)
	}
	if config.EnableRecovery {
		router.Use(middleware.Recoverer)
	}
	if config.CORS != nil && len(config.CORS.AllowedOrigins) > 0 {
		router.Use(CORS(*config.CORS))
	}
	if config.EnableTimeout && config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}
	if config.EnableHeartbeat {
		router.Use(middleware.Heartbeat("/ping"))
	}
}
