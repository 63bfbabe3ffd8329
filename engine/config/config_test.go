package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vecglyph.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[renderer]
backend = "soft"
temporal_frames = 8

[theme]
name = "light"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "soft", cfg.Renderer.Backend)
	assert.Equal(t, 8, cfg.Renderer.TemporalFrames)
	assert.Equal(t, "light", cfg.Theme.Name)
	// untouched sections keep their defaults
	assert.Equal(t, Default().Window, cfg.Window)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[renderer]
backend = "metal"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := writeConfig(t, `[renderer`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateClampsTemporalFrames(t *testing.T) {
	cfg := Default()
	cfg.Renderer.TemporalFrames = 100
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MaxTemporalFrames, cfg.Renderer.TemporalFrames)

	cfg.Renderer.TemporalFrames = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRestoresCacheCapacity(t *testing.T) {
	cfg := Default()
	cfg.Renderer.GlyphCacheCapacity = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default().Renderer.GlyphCacheCapacity, cfg.Renderer.GlyphCacheCapacity)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `
[renderer]
backend = "soft"
`)
	reloaded := make(chan Config, 1)
	w, err := Watch(path, func(c Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`
[renderer]
backend = "soft"
temporal_frames = 4
`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 4, cfg.Renderer.TemporalFrames)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatcherKeepsPreviousOnBadReload(t *testing.T) {
	path := writeConfig(t, `
[renderer]
backend = "soft"
`)
	calls := make(chan Config, 4)
	w, err := Watch(path, func(c Config) { calls <- c })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`[renderer`), 0o644))
	// a broken file must not produce a callback; follow with a good one
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "fixed"
width = 640
height = 480
`), 0o644))

	select {
	case cfg := <-calls:
		assert.Equal(t, "fixed", cfg.Window.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
