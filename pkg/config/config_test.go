package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Overrides(t *testing.T) {
	path := writeFile(t, `
[server]
url = "http://kg.internal:8080/"
graph = "graph-theory.json"

[layout]
charge = -400
width = 1200

[explorer]
neighborhood_depth = 2
tick_interval = "33ms"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://kg.internal:8080", cfg.Server.URL)
	assert.Equal(t, "graph-theory.json", cfg.Server.Graph)
	assert.Equal(t, -400.0, cfg.Layout.Charge)
	assert.Equal(t, 1200.0, cfg.Layout.Width)
	assert.Equal(t, layout.DefaultConfig().LinkDistance, cfg.Layout.LinkDistance)
	assert.Equal(t, 2, cfg.Explorer.NeighborhoodDepth)
	assert.Equal(t, 33*time.Millisecond, cfg.Explorer.TickInterval.Duration)
	assert.Equal(t, 4*time.Second, cfg.Explorer.StatusTimeout.Duration)
	assert.True(t, cfg.UI.Color)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(writeFile(t, "[layout]\nchrage = -400\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout.chrage")
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeFile(t, "[explorer]\ntick_interval = \"fast\"\n"))
	assert.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Explorer.NeighborhoodDepth = 3
	cfg.Layout.Charge = -100
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
