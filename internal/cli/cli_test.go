package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp("test")
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.RunContext(context.Background(), append([]string{"relay-bot"}, args...))
	return out.String(), err
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")

	out, err := runApp(t, "config", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "discord:  true")
	assert.Contains(t, out, `trigger:  "?"`)
	assert.NotContains(t, out, "warning")
}

func TestConfigValidate_WarnsWithoutDiscordToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	out, err := runApp(t, "config", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "DISCORD_BOT_TOKEN is not set")
}

func TestConfigValidate_RejectsBadTrigger(t *testing.T) {
	t.Setenv("RELAY_TRIGGER", " ?")

	_, err := runApp(t, "config", "validate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestConfigValidate_ReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  trigger: \"!ask\"\n"), 0o600))

	out, err := runApp(t, "--config-file", path, "config", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, `trigger:  "!ask"`)
}

func TestConfigValidate_MissingFile(t *testing.T) {
	_, err := runApp(t, "--config-file", filepath.Join(t.TempDir(), "missing.yaml"), "config", "validate")
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		out, err := runApp(t, "health", "--url", srv.URL)

		require.NoError(t, err)
		assert.Contains(t, out, "ready")
	})

	t.Run("not ready", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := runApp(t, "health", "--url", srv.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not ready")
	})
}
