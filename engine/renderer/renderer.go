package renderer

import (
	"errors"
	"sync"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/fontsource"
	"github.com/vecglyph/vecglyph/engine/glyph"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
	"github.com/vecglyph/vecglyph/engine/theme"
)

// Renderer orchestrates one frame: layout snapshot in, composited image
// out. It owns the glyph mesh cache and the instance stream builder;
// the backend owns everything sized to the render target.
type Renderer struct {
	backend Backend
	fonts   *fontsource.Registry
	cache   *glyph.Cache
	builder *instance.StreamBuilder
	mode    theme.Mode
}

var initRenderer sync.Once
var renderer *Renderer

// Initialize wires the renderer singleton. The backend must be fresh;
// Initialize calls its Initialize with the target size.
func Initialize(backend Backend, fonts *fontsource.Registry, mode theme.Mode, cacheCapacity int, width, height uint32) error {
	initRenderer.Do(func() {
		renderer = &Renderer{
			backend: backend,
			fonts:   fonts,
			cache:   glyph.NewCache(cacheCapacity),
			builder: instance.NewStreamBuilder(),
			mode:    mode,
		}
	})
	return renderer.backend.Initialize(width, height)
}

func Shutdown() error {
	if renderer == nil {
		return nil
	}
	return renderer.backend.Shutdown()
}

// OnResize reallocates target-sized backend resources. Cached glyph
// meshes are resolution independent and stay valid.
func OnResize(width, height uint32) error {
	return renderer.backend.Resize(width, height)
}

// SetMode switches the color palette.
func SetMode(mode theme.Mode) {
	renderer.mode = mode
}

// mesh returns the cached tessellation for one glyph, building it on
// first use. Lookup failures produce an empty mesh so one bad character
// cannot abort the frame.
func (r *Renderer) mesh(g instance.Group) *outline.Mesh {
	key := glyph.Key{Font: g.Font, Char: g.Char}
	return r.cache.GetOrInsert(key, func() *outline.Mesh {
		src := r.fonts.ByID(g.Font)
		if src == nil {
			var err error
			src, err = r.fonts.Lookup(g.Char)
			if err != nil {
				core.LogWarn("no font provides glyph %q", g.Char)
				return &outline.Mesh{}
			}
		}
		m, err := src.Mesh(g.Char)
		if err != nil {
			if !errors.Is(err, fontsource.ErrGlyphNotFound) {
				core.LogWarn("tessellating %q: %v", g.Char, err)
			}
			return &outline.Mesh{}
		}
		return m
	})
}

// DrawFrame renders one layout snapshot. Device loss is fatal to the
// session and propagates to the host, which must recreate the backend;
// the mesh cache survives since it holds no GPU resources.
func DrawFrame(snapshot instance.Snapshot, viewProjection math.Mat4, now uint32) error {
	r := renderer
	stream := r.builder.Build(snapshot)

	packet := &FramePacket{
		Now:            now,
		ViewProjection: viewProjection,
		Background:     r.mode.Background().RGB(),
		Groups:         make([]DrawGroup, 0, len(stream.Groups)),
	}
	for _, g := range stream.Groups {
		packet.Groups = append(packet.Groups, DrawGroup{
			Mesh:      r.mesh(g),
			Instances: g.Instances,
		})
	}

	if err := r.backend.Render(packet); err != nil {
		if errors.Is(err, core.ErrDeviceLost) {
			core.LogError("device lost, session cannot continue")
		}
		return err
	}

	// eviction strictly between frames, never under an in-flight draw
	r.cache.EndFrame()
	return nil
}
