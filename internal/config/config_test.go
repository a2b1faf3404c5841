package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.CyclesTimeout)
	assert.Empty(t, cfg.DBDSN)
	assert.True(t, cfg.SweepEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CYCLES_BASE_URL", "http://cycles.local")
	t.Setenv("CYCLES_TIMEOUT", "2s")
	t.Setenv("SWEEP_SCHEDULE", "off")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://cycles.local", cfg.CyclesBaseURL)
	assert.Equal(t, 2*time.Second, cfg.CyclesTimeout)
	assert.False(t, cfg.SweepEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\napp_name: from-file\nlegacy_sqlite_path: /data/old.db\n"), 0o600))
	t.Setenv("APP_NAME", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "from-env", cfg.AppName)
	assert.Equal(t, "/data/old.db", cfg.LegacySQLitePath)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	_, err := Load("")
	assert.Error(t, err)
}
