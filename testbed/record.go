package testbed

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/vecglyph/vecglyph/engine/camera"
	"github.com/vecglyph/vecglyph/engine/config"
	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/fontsource"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/renderer"
	"github.com/vecglyph/vecglyph/engine/renderer/soft"
	"github.com/vecglyph/vecglyph/engine/theme"
)

// Record renders the demo scene off-screen through the software backend
// and writes one PNG per frame into dir. The clock is synthetic, frames
// are spaced at exactly 1000/fps ticks, so a recording is reproducible.
func Record(configPath, dir string, frames, fps int) error {
	if frames <= 0 || fps <= 0 {
		return fmt.Errorf("frames and fps must be positive")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		core.LogWarn("%s, using defaults", err)
	}
	core.SetLogLevel(cfg.Log.Level)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	fonts := fontsource.NewRegistry()
	src, err := fonts.Register(goregular.TTF)
	if err != nil {
		return err
	}
	scene := BuildScene(src)

	backend := soft.New(cfg.Renderer.TemporalFrames)
	mode := theme.ByName(cfg.Theme.Name)
	width, height := cfg.Window.Width, cfg.Window.Height
	if err := renderer.Initialize(backend, fonts, mode, cfg.Renderer.GlyphCacheCapacity, width, height); err != nil {
		return err
	}
	defer renderer.Shutdown()

	cam := camera.New(math.NewVec3(0, 0, 30), math.NewVec3Zero(), float32(width)/float32(height))

	for i := 0; i < frames; i++ {
		now := uint32(i * 1000 / fps)
		snap := instance.Snapshot{Font: src.ID(), Chars: scene}
		if err := renderer.DrawFrame(snap, cam.ViewProjection(now), now); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.Encode(f, backend.Image()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	core.LogInfo("wrote %d frames to %s", frames, dir)
	return nil
}
