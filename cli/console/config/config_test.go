package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigLoad(t *testing.T) {
	log.SetOutput(io.Discard)

	cfg := `backend_url: "http://localhost:5000"
username: "ops"
password: "secret"
log_level: "DEBUG"
history_hours: 6

storage:
  redis:
    server: "localhost:6379"
  nats:
    servers: "nats://localhost:4222"
    subject: "console.fleet"

archive:
  cron: "0 3 * * *"
  dir: "/var/lib/console/archive"
`

	conf, err := New(writeConfig(t, cfg))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", conf.BackendURL)
	assert.Equal(t, log.DebugLevel, conf.GetLogLevel())
	assert.Equal(t, types.HistoryWindow6h, conf.GetHistoryWindow())
	assert.Equal(t, 5*time.Second, conf.GetFleetPeriod())
	assert.Equal(t, 10*time.Second, conf.GetSelectionPeriod())
	assert.Equal(t, 500*time.Millisecond, conf.GetSearchDebounce())
	assert.Equal(t, 10*time.Second, conf.GetRequestTimeout())
	assert.Equal(t, 8, conf.LocationConcurrency)
	assert.Equal(t, "127.0.0.1:8090", conf.Listen)
	assert.Equal(t, map[string]map[string]string{
		"redis": {"server": "localhost:6379"},
		"nats":  {"servers": "nats://localhost:4222", "subject": "console.fleet"},
	}, conf.Store)

	assert.True(t, conf.ArchiveEnabled())
	assert.Equal(t, types.ExportFormatCSV, conf.GetArchiveFormat())
	assert.Equal(t, types.HistoryWindow24h, conf.GetArchiveWindow())
}

func TestConfigEnvOverride(t *testing.T) {
	log.SetOutput(io.Discard)
	t.Setenv(usernameEnv, "env-user")
	t.Setenv(passwordEnv, "env-pass")

	conf, err := New(writeConfig(t, `backend_url: "https://tracker.example.com"`))
	require.NoError(t, err)
	assert.Equal(t, "env-user", conf.Username)
	assert.Equal(t, "env-pass", conf.Password)
	assert.False(t, conf.ArchiveEnabled())
}

func TestConfigValidation(t *testing.T) {
	log.SetOutput(io.Discard)

	tests := []struct {
		name string
		cfg  string
	}{
		{"missing backend", `username: "a"
password: "b"`},
		{"bad history", `backend_url: "http://localhost:5000"
username: "a"
password: "b"
history_hours: 12`},
		{"bad log level", `backend_url: "http://localhost:5000"
username: "a"
password: "b"
log_level: "TRACE"`},
		{"archive without dir", `backend_url: "http://localhost:5000"
username: "a"
password: "b"
archive:
  cron: "@daily"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeConfig(t, tt.cfg))
			assert.Error(t, err)
		})
	}
}
