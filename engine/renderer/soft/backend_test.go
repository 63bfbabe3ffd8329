package soft

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
	"github.com/vecglyph/vecglyph/engine/renderer"
)

// circleMesh approximates a filled circle with eight quadratic bezier
// segments, in normalized device coordinates.
func circleMesh(radius float32) *outline.Mesh {
	const segs = 8
	b := outline.NewBuilder()
	ctrlRadius := radius / float32(stdmath.Cos(stdmath.Pi/segs))
	at := func(r float64, angle float64) math.Vec2 {
		return math.NewVec2(float32(r*stdmath.Cos(angle)), float32(r*stdmath.Sin(angle)))
	}
	b.MoveTo(at(float64(radius), 0))
	for i := 0; i < segs; i++ {
		a0 := 2 * stdmath.Pi * float64(i) / segs
		a1 := 2 * stdmath.Pi * float64(i+1) / segs
		b.QuadTo(at(float64(ctrlRadius), (a0+a1)/2), at(float64(radius), a1))
	}
	b.Close()
	return b.Build(math.NewVec2(0, 0), 1)
}

func whiteInstance() instance.Raw {
	a := instance.DefaultAttributes()
	a.Color = [3]float32{1, 1, 1}
	return a.Raw()
}

func circlePacket(radius float32) *renderer.FramePacket {
	return &renderer.FramePacket{
		ViewProjection: math.NewMat4Identity(),
		Background:     [3]float32{0, 0, 0},
		Groups: []renderer.DrawGroup{
			{Mesh: circleMesh(radius), Instances: []instance.Raw{whiteInstance()}},
		},
	}
}

func TestRenderFilledCircle(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Initialize(64, 64))
	require.NoError(t, b.Render(circlePacket(0.4)))

	img := b.Image()
	// glyph centroid: full alpha over a black background
	centroid := img.RGBAAt(32, 32)
	assert.Greater(t, centroid.R, uint8(220), "centroid must be filled")
	// well clear of the glyph: untouched background
	corner := img.RGBAAt(2, 2)
	assert.Equal(t, uint8(0), corner.R)
	assert.Equal(t, uint8(0), corner.G)
	assert.Equal(t, uint8(0), corner.B)
}

func TestRenderCircleEdgeIsAntiAliased(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Initialize(64, 64))
	require.NoError(t, b.Render(circlePacket(0.4)))

	// scan the centroid row for at least one partially covered pixel
	img := b.Image()
	partial := 0
	for x := 0; x < 64; x++ {
		r := img.RGBAAt(x, 32).R
		if r > 10 && r < 245 {
			partial++
		}
	}
	assert.Greater(t, partial, 0, "circle edge should produce intermediate alpha")
}

func TestRenderBeforeInitializeFails(t *testing.T) {
	b := New(0)
	assert.Error(t, b.Render(circlePacket(0.4)))
	assert.Error(t, b.Resize(32, 32))
}

func TestResizeReallocatesTarget(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Initialize(32, 32))
	require.NoError(t, b.Resize(128, 96))
	require.NoError(t, b.Render(circlePacket(0.4)))
	bounds := b.Image().Bounds()
	assert.Equal(t, 128, bounds.Dx())
	assert.Equal(t, 96, bounds.Dy())
}

func TestRenderSkipsEmptyMeshes(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Initialize(16, 16))
	packet := &renderer.FramePacket{
		ViewProjection: math.NewMat4Identity(),
		Groups: []renderer.DrawGroup{
			{Mesh: &outline.Mesh{}, Instances: []instance.Raw{whiteInstance()}},
		},
	}
	require.NoError(t, b.Render(packet))
	corner := b.Image().RGBAAt(8, 8)
	assert.Equal(t, uint8(0), corner.R)
}

func TestFramePacketTriangleCount(t *testing.T) {
	p := circlePacket(0.4)
	mesh := p.Groups[0].Mesh
	assert.Equal(t, mesh.TriangleCount(), p.TriangleCount())
	p.Groups[0].Instances = append(p.Groups[0].Instances, whiteInstance())
	assert.Equal(t, 2*mesh.TriangleCount(), p.TriangleCount())
}
