package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/lewisedginton/gemini_relay_bot/pkg/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/health"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
	"github.com/lewisedginton/gemini_relay_bot/pkg/metrics"
)

func newTestServer(ready bool) (*Server, *metrics.Metrics) {
	log := logger.NewLogger(logger.Config{Output: io.Discard})
	checker := health.New()
	checker.AddReadinessCheck(health.NewCheckFunc("connectors", func(context.Context) error {
		if ready {
			return nil
		}
		return errors.New("no connector connected")
	}))
	m := metrics.NewMetrics(true, true, log)
	return New(pkgconfig.HTTPServerConfig{Port: 8080}, checker, m, log), m
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_HealthEndpoints(t *testing.T) {
	s, _ := newTestServer(false)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), LivenessPath).Code)

	rec := get(t, s.Handler(), ReadinessPath)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no connector connected")

	ready, _ := newTestServer(true)
	assert.Equal(t, http.StatusOK, get(t, ready.Handler(), ReadinessPath).Code)
}

func TestServer_Metrics(t *testing.T) {
	s, m := newTestServer(true)
	m.RecordOutcome("discord", metrics.OutcomeReplied)

	rec := get(t, s.Handler(), MetricsPath)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `relay_messages_total{outcome="replied",platform="discord"} 1`)
}

func TestServer_SecurityHeadersAndCorrelation(t *testing.T) {
	s, _ := newTestServer(true)

	rec := get(t, s.Handler(), LivenessPath)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	log := logger.NewLogger(logger.Config{Output: io.Discard})
	s := New(pkgconfig.HTTPServerConfig{Port: 0}, health.New(), nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}
