// Package config loads the renderer configuration from a TOML file and
// watches it for changes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// MaxTemporalFrames is the most prior frames the resolve stage can fold
// in; the parity history is a 32-bit mask per pixel.
const MaxTemporalFrames = 32

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	// Backend selects the render path: "vulkan" or "soft".
	Backend string `toml:"backend"`
	// TemporalFrames enables temporal anti-aliasing when > 0 by blending
	// parity bits of up to that many prior frames.
	TemporalFrames int `toml:"temporal_frames"`
	// GlyphCacheCapacity bounds the tessellated mesh cache.
	GlyphCacheCapacity int  `toml:"glyph_cache_capacity"`
	VSync              bool `toml:"vsync"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ThemeConfig struct {
	// Name selects the palette: "dark" or "light".
	Name string `toml:"name"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
	Theme    ThemeConfig    `toml:"theme"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "vecglyph",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			Backend:            "vulkan",
			TemporalFrames:     0,
			GlyphCacheCapacity: 1024,
			VSync:              true,
		},
		Log:   LogConfig{Level: "info"},
		Theme: ThemeConfig{Name: "dark"},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration in place.
func (c *Config) Validate() error {
	switch c.Renderer.Backend {
	case "vulkan", "soft":
	case "":
		c.Renderer.Backend = "vulkan"
	default:
		return fmt.Errorf("unknown renderer backend %q", c.Renderer.Backend)
	}
	if c.Renderer.TemporalFrames < 0 {
		return fmt.Errorf("temporal_frames must not be negative")
	}
	if c.Renderer.TemporalFrames > MaxTemporalFrames {
		c.Renderer.TemporalFrames = MaxTemporalFrames
	}
	if c.Renderer.GlyphCacheCapacity <= 0 {
		c.Renderer.GlyphCacheCapacity = Default().Renderer.GlyphCacheCapacity
	}
	switch c.Theme.Name {
	case "dark", "light":
	case "":
		c.Theme.Name = "dark"
	default:
		return fmt.Errorf("unknown theme %q", c.Theme.Name)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window dimensions must not be zero")
	}
	return nil
}
