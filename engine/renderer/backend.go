package renderer

import (
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
)

// DrawGroup pairs one glyph mesh with every instance drawn from it this
// frame.
type DrawGroup struct {
	Mesh      *outline.Mesh
	Instances []instance.Raw
}

// FramePacket is everything a backend needs to draw one frame. Packets
// are rebuilt every frame and never retained by the backend past the
// frame's submission.
type FramePacket struct {
	Now            uint32
	ViewProjection math.Mat4
	Background     [3]float32
	Groups         []DrawGroup
}

// TriangleCount returns the frame's total tessellated triangle load,
// counting each instance separately.
func (p *FramePacket) TriangleCount() int {
	total := 0
	for _, g := range p.Groups {
		total += g.Mesh.TriangleCount() * len(g.Instances)
	}
	return total
}

// Backend is one rendering path. A frame is a bounded unit of work
// submitted from a single control thread; the pass ordering inside
// Render is cleanup, overlap accumulation, resolve, composition.
type Backend interface {
	Initialize(width, height uint32) error
	// Render draws one frame. It must not retain the packet.
	Render(packet *FramePacket) error
	// Resize reallocates the accumulator and every target-sized
	// resource. Cached glyph meshes are resolution independent and
	// survive untouched.
	Resize(width, height uint32) error
	Shutdown() error
}
