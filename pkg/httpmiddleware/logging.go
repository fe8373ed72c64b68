package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// HTTPLogger provides HTTP request/response logging middleware
type HTTPLogger struct {
	logger logger.Logger
	quiet  map[string]bool
}

// NewHTTPLogger creates a request logger. Requests to quietPaths are logged
// at debug level so probes and scrapes do not flood the log.
func NewHTTPLogger(log logger.Logger, quietPaths ...string) *HTTPLogger {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}
	return &HTTPLogger{logger: log, quiet: quiet}
}

// Middleware returns the HTTP logging middleware
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log := h.RequestLogger(r).WithFields(
			logger.HTTPStatusField(ww.Status()),
			logger.IntField("response_bytes", ww.BytesWritten()),
			logger.DurationField("duration", time.Since(start)),
		)
		if h.quiet[r.URL.Path] {
			log.Debug("HTTP request served")
			return
		}
		log.Info("HTTP request served")
	})
}

// RequestLogger creates a logger with request context for use in handlers
func (h *HTTPLogger) RequestLogger(r *http.Request) logger.Logger {
	return h.logger.WithFields(
		logger.ClientIPField(r.RemoteAddr),
		logger.HTTPMethodField(r.Method),
		logger.HTTPPathField(r.URL.Path),
		logger.CorrelationIDField(r.Header.Get(CorrelationIDHeader)),
	)
}
