package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newServer(t *testing.T, status int, body string, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), "unexpected path %s", r.URL.Path)

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_DefaultModel(t *testing.T) {
	g, err := New(context.Background(), Config{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.Model())
	assert.Equal(t, "gemini", g.Name())
}

func TestGenerate_MissingKey(t *testing.T) {
	g, err := New(context.Background(), Config{Model: "gemini-2.5-pro"}, testLogger())
	require.NoError(t, err)

	res := g.Generate(context.Background(), "hello")
	require.False(t, res.OK())
	assert.Equal(t, "gemini API key is not configured", res.Failure.Description)
}

func TestGenerate_Success(t *testing.T) {
	calls := 0
	srv := newServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"world"}]},"finishReason":"STOP"}]}`, &calls)

	g, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	res := g.Generate(context.Background(), "hello")
	require.True(t, res.OK(), "failure: %+v", res.Failure)
	assert.Equal(t, "world", res.Text)
	assert.Equal(t, 1, calls)
}

func TestGenerate_APIErrorIsSingleAttempt(t *testing.T) {
	calls := 0
	srv := newServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, &calls)

	g, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	res := g.Generate(context.Background(), "hello")
	require.False(t, res.OK())
	assert.Contains(t, res.Failure.Description, "quota exceeded")
	assert.Equal(t, 1, calls)
}

func TestGenerate_BlockedPrompt(t *testing.T) {
	calls := 0
	srv := newServer(t, http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, &calls)

	g, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	res := g.Generate(context.Background(), "hello")
	require.False(t, res.OK())
	assert.Equal(t, "prompt blocked: SAFETY", res.Failure.Description)
}
