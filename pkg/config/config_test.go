package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cipherecho.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Client.Rounds)
	assert.Equal(t, 2*time.Second, cfg.Client.RoundDelay.Duration)
	assert.Zero(t, cfg.Client.ReadTimeout.Duration)
	assert.Zero(t, cfg.Server.ReadTimeout.Duration)
	assert.Empty(t, cfg.Server.MetricsAddress)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  read_timeout: 30s
  max_connections: 64
  reuse_port: true
  frame_rate: 100
  frame_burst: 10
  metrics_address: 127.0.0.1:9100
client:
  rounds: 5
  round_delay: 250ms
  log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 64, cfg.Server.MaxConnections)
	assert.True(t, cfg.Server.ReusePort)
	assert.Equal(t, int64(100), cfg.Server.FrameRate)
	assert.Equal(t, int64(10), cfg.Server.FrameBurst)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddress)
	assert.Equal(t, 5*time.Second, cfg.Server.GracePeriod.Duration)
	assert.Zero(t, cfg.Client.ReadTimeout.Duration)

	assert.Equal(t, 5, cfg.Client.Rounds)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.RoundDelay.Duration)
	assert.Equal(t, "debug", cfg.Client.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "client:\n  round_delay: soon\n"))
	assert.ErrorContains(t, err, "invalid duration")

	_, err = Load(writeFile(t, "server:\n  max_connections: lots\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "client:\n  rounds: -1\n"))
	assert.ErrorContains(t, err, "client.rounds")

	_, err = Load(writeFile(t, "server:\n  log_level: loud\n"))
	assert.ErrorContains(t, err, "server.log_level")

	_, err = Load(writeFile(t, "server:\n  frame_rate: 10\n"))
	assert.ErrorContains(t, err, "server.frame_burst")

	_, err = Load(writeFile(t, "server:\n  grace_period: -1s\n"))
	assert.ErrorContains(t, err, "server.grace_period")
}
