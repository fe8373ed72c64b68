// Package server runs the operator HTTP surface: health probes and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	pkgconfig "github.com/lewisedginton/gemini_relay_bot/pkg/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/health"
	"github.com/lewisedginton/gemini_relay_bot/pkg/httpmiddleware"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
	"github.com/lewisedginton/gemini_relay_bot/pkg/metrics"
)

const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server is the ops HTTP server.
type Server struct {
	cfg     pkgconfig.HTTPServerConfig
	log     logger.Logger
	handler http.Handler
}

// New builds the router. metrics may be nil, in which case /metrics is not served.
func New(cfg pkgconfig.HTTPServerConfig, checker *health.Checker, m *metrics.Metrics, log logger.Logger) *Server {
	r := chi.NewRouter()

	mw := httpmiddleware.DefaultConfig()
	mw.Logger = log
	mw.EnableLogging = true
	mw.QuietPaths = []string{LivenessPath, ReadinessPath, MetricsPath}
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors := httpmiddleware.ReadOnlyCORSConfig(cfg.CORSAllowedOrigins)
		mw.CORS = &cors
	}
	httpmiddleware.ApplyToRouter(r, mw)

	if m != nil {
		r.Use(m.HTTPMiddleware())
		r.Method(http.MethodGet, MetricsPath, m.Handler())
	}
	r.Get(LivenessPath, checker.LivenessHandler())
	r.Get(ReadinessPath, checker.ReadinessHandler())

	return &Server{cfg: cfg, log: log, handler: r}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Ops server listening", logger.IntField("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("ops server: %w", err)
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down ops server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout) //nolint:contextcheck // parent is already cancelled
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // uses the shutdown context
		return fmt.Errorf("ops server shutdown: %w", err)
	}
	return nil
}
