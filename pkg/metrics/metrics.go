// Package metrics provides Prometheus metrics for relay outcomes and the operator HTTP server.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "relay"
)

// Outcome label values recorded per inbound message.
const (
	OutcomeIgnored    = "ignored"
	OutcomeInstructed = "instructed"
	OutcomeReplied    = "replied"
	OutcomeFailed     = "failed"
)

// Metrics provides Prometheus metrics collection for the relay and its HTTP surface.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPRequestsCounters     map[int]prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram
	httpMu                   sync.Mutex

	MessagesCounter     *prometheus.CounterVec
	GenerationsCounter  *prometheus.CounterVec
	GenerationHistogram *prometheus.HistogramVec
	SendFailuresCounter prometheus.Counter

	log logger.Logger
}

// NewMetrics creates a new Metrics instance with the specified collectors enabled.
func NewMetrics(httpCounters, relayMetrics bool, l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests served by the ops server",
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter)
		m.HTTPRequestsCounters = make(map[int]prometheus.Counter)

		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
		})
		m.reg.MustRegister(m.HTTPDurationHistogram)
	}
	if relayMetrics {
		m.MessagesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "messages_total",
			Help:      "Inbound chat messages by platform and outcome",
		}, []string{"platform", "outcome"})

		m.GenerationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "generations_total",
			Help:      "Generation API calls by provider and result",
		}, []string{"provider", "result"})

		m.GenerationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "generation_duration_seconds",
			Help:      "Generation API call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider"})

		m.SendFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "send_failures_total",
			Help:      "Outbound chat sends that returned an error",
		})

		m.reg.MustRegister(m.MessagesCounter, m.GenerationsCounter, m.GenerationHistogram, m.SendFailuresCounter)
	}
	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen serves /metrics on its own port until ctx is cancelled.
func (m *Metrics) Listen(ctx context.Context, port int) error {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))

	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		m.log.Info("Stopping metrics listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// RecordOutcome counts one inbound message. No-op when relay metrics are disabled.
func (m *Metrics) RecordOutcome(platform, outcome string) {
	if m == nil || m.MessagesCounter == nil {
		return
	}
	m.MessagesCounter.WithLabelValues(platform, outcome).Inc()
}

// RecordGeneration records one generation call and its latency.
func (m *Metrics) RecordGeneration(provider string, d time.Duration, failed bool) {
	if m == nil || m.GenerationsCounter == nil {
		return
	}
	result := "success"
	if failed {
		result = "failure"
	}
	m.GenerationsCounter.WithLabelValues(provider, result).Inc()
	m.GenerationHistogram.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordSendFailure counts one failed outbound chat send.
func (m *Metrics) RecordSendFailure() {
	if m == nil || m.SendFailuresCounter == nil {
		return
	}
	m.SendFailuresCounter.Inc()
}

// AddCustomMetric registers a custom Prometheus collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.reg.MustRegister(c)
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP status code.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	m.httpMu.Lock()
	defer m.httpMu.Unlock()

	c, ok := m.HTTPRequestsCounters[code]
	if !ok {
		c = newTotalHTTPReqMetric(code)
		m.reg.MustRegister(c)
		m.HTTPRequestsCounters[code] = c
	}
	c.Inc()
}

func newTotalHTTPReqMetric(code int) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      fmt.Sprintf("total_%d_http_responses", code),
		Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
	})
}

// HTTPMiddleware returns a Chi-compatible middleware that tracks HTTP metrics.
// It passes requests through untouched when HTTP metrics are disabled.
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.TotalHTTPRequestsCounter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.IncrementHTTPResponseCounter(rw.statusCode)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
