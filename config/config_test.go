package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Flags{})
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:8500/simconnect", cfg.BridgeURL)
	assert.Equal(t, "msfs-agent", cfg.ClientName)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.WaitInterval)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0.0, cfg.EventRate)
	assert.Equal(t, 1, cfg.EventBurst)
	assert.Equal(t, 64, cfg.InboxSize)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "agent.yaml", `
bridge_url: ws://file:8500/simconnect
client_name: from-file
connect_timeout: 7
poll_interval: 3ms
event_rate: 2.5
inbox_size: 16
log_level: WARN
`)

	t.Setenv("MSFS_AGENT_CONFIG", path)
	t.Setenv("MSFS_AGENT_CLIENT_NAME", "from-env")
	t.Setenv("MSFS_AGENT_CONNECT_TIMEOUT", "9s")
	t.Setenv("MSFS_AGENT_LOG_LEVEL", "ERROR")

	cfg, err := Load(Flags{LogLevel: "DEBUG"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "DEBUG", cfg.LogLevel, "flag wins")
	assert.Equal(t, "from-env", cfg.ClientName, "env beats file")
	assert.Equal(t, 9*time.Second, cfg.ConnectTimeout, "env beats file")
	assert.Equal(t, "ws://file:8500/simconnect", cfg.BridgeURL, "file beats default")
	assert.Equal(t, 3*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 2.5, cfg.EventRate)
	assert.Equal(t, 16, cfg.InboxSize)
	assert.Equal(t, 1, cfg.EventBurst, "default when unset everywhere")
}

func TestLoadDurationForms(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"plain seconds", "30", 30 * time.Second},
		{"duration string", "1m30s", 90 * time.Second},
		{"invalid falls back", "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(Flags{ConnectTimeout: tt.val})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ConnectTimeout)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	path := writeFile(t, "bad.yaml", "bridge_url: ws://x\nsurprise: true\n")
	_, err = Load(Flags{ConfigFile: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	cfg, err := Load(Flags{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "msfs-agent", cfg.ClientName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  string
	}{
		{"http scheme", Flags{BridgeURL: "http://localhost:8500"}, "scheme must be ws or wss"},
		{"log level", Flags{LogLevel: "LOUD"}, "unknown log level"},
		{"log format", Flags{LogFormat: "xml"}, "unknown log format"},
		{"inbox size", Flags{InboxSize: "0"}, "inbox size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.flags)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadToken(t *testing.T) {
	path := writeFile(t, "token", "  s3cret\n")

	cfg := &Config{TokenFile: path, Token: "inline"}
	token, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token, "file wins over inline")

	cfg = &Config{Token: " inline "}
	token, err = cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "inline", token)

	cfg = &Config{TokenFile: filepath.Join(t.TempDir(), "nope")}
	_, err = cfg.LoadToken()
	assert.Error(t, err)
}
