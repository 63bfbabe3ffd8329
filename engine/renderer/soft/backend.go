package soft

import (
	"errors"
	"image"
	"runtime"
	"sync"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/motion"
	"github.com/vecglyph/vecglyph/engine/outline"
	"github.com/vecglyph/vecglyph/engine/renderer"
)

var errNotInitialized = errors.New("soft backend not initialized")

// Backend renders frames entirely on the CPU. The finished frame is an
// sRGB image retrievable with Image, which makes this path suitable for
// export as well as conformance testing against the GPU path.
type Backend struct {
	temporalFrames int
	workers        int

	width  uint32
	height uint32

	acc      *Accumulator
	resolver *Resolver
	layer    *Layer
	img      *image.RGBA
}

func New(temporalFrames int) *Backend {
	return &Backend{
		temporalFrames: temporalFrames,
		workers:        runtime.GOMAXPROCS(0),
	}
}

func (b *Backend) Initialize(width, height uint32) error {
	b.allocate(width, height)
	core.LogInfo("soft backend initialized at %dx%d with %d workers", width, height, b.workers)
	return nil
}

func (b *Backend) Resize(width, height uint32) error {
	if b.acc == nil {
		return errNotInitialized
	}
	b.allocate(width, height)
	return nil
}

func (b *Backend) allocate(width, height uint32) {
	b.width = width
	b.height = height
	b.acc = NewAccumulator(width, height)
	b.resolver = NewResolver(width, height, b.temporalFrames)
	b.layer = NewLayer(width, height)
	b.img = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
}

func (b *Backend) Shutdown() error {
	b.acc = nil
	b.resolver = nil
	b.layer = nil
	b.img = nil
	return nil
}

// Image returns the most recently composited frame. The buffer is reused
// across frames; copy it before rendering again if it must survive.
func (b *Backend) Image() *image.RGBA {
	return b.img
}

type drawJob struct {
	mesh *outline.Mesh
	raw  instance.Raw
}

// Render runs the four passes for one frame: cleanup, overlap
// accumulation (parallel over instances, all writes atomic), resolve,
// composition.
func (b *Backend) Render(packet *renderer.FramePacket) error {
	if b.acc == nil {
		return errNotInitialized
	}

	b.acc.Reset()

	jobs := make(chan drawJob, b.workers)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				b.drawInstance(packet, j.mesh, j.raw)
			}
		}()
	}
	for _, g := range packet.Groups {
		if g.Mesh == nil || g.Mesh.Empty() {
			continue
		}
		for _, raw := range g.Instances {
			jobs <- drawJob{mesh: g.Mesh, raw: raw}
		}
	}
	close(jobs)
	wg.Wait()

	b.resolver.Resolve(b.acc, b.layer)
	Composite(b.layer, packet.Background, b.img)
	return nil
}

// drawInstance projects one instance's mesh to screen space and scans
// its triangles into the accumulator.
func (b *Backend) drawInstance(packet *renderer.FramePacket, mesh *outline.Mesh, raw instance.Raw) {
	transform := instance.MotionTransform(raw, packet.Now)
	if !motion.Unpack(raw.Motion).IgnoreCamera {
		transform = packet.ViewProjection.Mul(transform)
	}

	verts := make([]screenVertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		clip := math.NewVec4FromVec3(math.NewVec3(v.Position.X, v.Position.Y, 0), 1).Transform(transform)
		if clip.W <= 1e-6 {
			// behind the camera; no polygon clipping on this path
			return
		}
		wait := v.Role.Wait()
		verts[i] = screenVertex{
			x: (clip.X/clip.W + 1) * 0.5 * float32(b.width),
			y: (1 - clip.Y/clip.W) * 0.5 * float32(b.height),
			u: wait[0],
			v: wait[1],
		}
	}

	for t := 0; t+2 < len(mesh.BezierFill); t += 3 {
		rasterize(b.acc, triBezierFill,
			verts[mesh.BezierFill[t]], verts[mesh.BezierFill[t+1]], verts[mesh.BezierFill[t+2]], raw.Color)
	}
	for t := 0; t+2 < len(mesh.BezierComplement); t += 3 {
		rasterize(b.acc, triBezierComplement,
			verts[mesh.BezierComplement[t]], verts[mesh.BezierComplement[t+1]], verts[mesh.BezierComplement[t+2]], raw.Color)
	}
	for t := 0; t+2 < len(mesh.LineFill); t += 3 {
		rasterize(b.acc, triLineFill,
			verts[mesh.LineFill[t]], verts[mesh.LineFill[t+1]], verts[mesh.LineFill[t+2]], raw.Color)
	}
}
