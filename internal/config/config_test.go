package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8480", cfg.Server.URL)
	assert.True(t, cfg.Mock.Enabled)
	assert.Equal(t, 5.0, cfg.Mock.FailPercent)
	assert.Equal(t, 50.0, cfg.Mock.FlakyPercent)
	assert.Equal(t, 5, cfg.Notify.MaxToasts)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel", "config.yaml")

	cfg := Default()
	cfg.Server.URL = "https://panel.example.com"
	cfg.Server.Token = "pnl_sess_abc123"
	cfg.Mock.Enabled = false
	cfg.Mock.LatencyScale = 0.25
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://panel.example.com", loaded.Server.URL)
	assert.Equal(t, "pnl_sess_abc123", loaded.Server.Token)
	assert.False(t, loaded.Mock.Enabled)
	assert.Equal(t, 0.25, loaded.Mock.LatencyScale)
}

func TestLoadFlooredToastCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notify:\n  max_toasts: 0\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Notify.MaxToasts)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestMockEnabledEnvOverride(t *testing.T) {
	cfg := Default()
	cfg.Mock.Enabled = false

	t.Setenv("PANEL_MOCK", "")
	assert.False(t, cfg.MockEnabled())

	t.Setenv("PANEL_MOCK", "1")
	assert.True(t, cfg.MockEnabled())

	t.Setenv("PANEL_MOCK", "true")
	assert.True(t, cfg.MockEnabled())

	cfg.Mock.Enabled = true
	t.Setenv("PANEL_MOCK", "0")
	assert.False(t, cfg.MockEnabled())

	t.Setenv("PANEL_MOCK", "garbage")
	assert.True(t, cfg.MockEnabled(), "unknown values fall back to the config")
}

func TestStorePathHonorsOverride(t *testing.T) {
	cfg := Default()
	cfg.Notify.StorePath = "/var/lib/panel/notifications.db"

	p, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/panel/notifications.db", p)
}
