package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
	assert.Equal(t, 100, cfg.History.Limit)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(write(t, `
[server]
addr = ":9000"
mdns = true

[client]
canvas_id = "abc"
autosave = ""

[history]
limit = 50
`))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.MDNS)
	assert.Equal(t, "abc", cfg.Client.CanvasID)
	assert.Empty(t, cfg.Client.Autosave)
	assert.Equal(t, "http://localhost:8888", cfg.Client.ServerURL, "untouched keys keep defaults")
	assert.Equal(t, 50, cfg.History.Limit)
}

func TestLoadUnlimitedHistory(t *testing.T) {
	cfg, err := Load(write(t, "[history]\nlimit = 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.History.Limit)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	_, err := Load(write(t, "[server]\nport = 1\n"))
	assert.ErrorContains(t, err, "unknown keys")

	_, err = Load(write(t, "[history]\nlimit = -1\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "not = = toml"))
	assert.Error(t, err)
}

func TestStringRoundTrips(t *testing.T) {
	cfg := New()
	cfg.Client.CanvasID = "xyz"
	path := write(t, cfg.String())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
