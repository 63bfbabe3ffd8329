package vulkan

import (
	"encoding/binary"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
	"github.com/vecglyph/vecglyph/engine/renderer"
)

func testMesh() *outline.Mesh {
	return &outline.Mesh{
		Vertices: []outline.Vertex{
			{Position: math.NewVec2(0, 0), Role: outline.RoleOriginLine},
			{Position: math.NewVec2(1, 0), Role: outline.RoleStartLine},
			{Position: math.NewVec2(1, 1), Role: outline.RoleEndLine},
			{Position: math.NewVec2(0.5, 0.2), Role: outline.RoleControl},
		},
		LineFill:   []uint32{0, 1, 2},
		BezierFill: []uint32{0, 1, 3},
	}
}

func testRaw() instance.Raw {
	a := instance.DefaultAttributes()
	return a.Raw()
}

func TestBuildGeometryStreamPacksCategories(t *testing.T) {
	mesh := testMesh()
	packet := &renderer.FramePacket{
		Groups: []renderer.DrawGroup{
			{Mesh: mesh, Instances: []instance.Raw{testRaw(), testRaw()}},
		},
	}

	gs := BuildGeometryStream(packet)
	require.False(t, gs.Empty())

	assert.Len(t, gs.Vertices, 4*int(GPUVertexStride))
	assert.Len(t, gs.Indices, 6*4)
	assert.Len(t, gs.Instances, 2*instance.RawStride)

	// one draw per non-empty category, bezier fill first
	require.Len(t, gs.Draws, 2)
	assert.Equal(t, DrawBezierFill, gs.Draws[0].Kind)
	assert.Equal(t, DrawLineFill, gs.Draws[1].Kind)
	assert.Equal(t, uint32(0), gs.Draws[0].IndexFirst)
	assert.Equal(t, uint32(3), gs.Draws[0].IndexCount)
	assert.Equal(t, uint32(3), gs.Draws[1].IndexFirst)
	for _, d := range gs.Draws {
		assert.Equal(t, int32(0), d.VertexOffset)
		assert.Equal(t, uint32(0), d.InstanceFirst)
		assert.Equal(t, uint32(2), d.InstanceCount)
	}
}

func TestBuildGeometryStreamVertexLayout(t *testing.T) {
	mesh := testMesh()
	packet := &renderer.FramePacket{
		Groups: []renderer.DrawGroup{
			{Mesh: mesh, Instances: []instance.Raw{testRaw()}},
		},
	}
	gs := BuildGeometryStream(packet)

	readFloat := func(off int) float32 {
		return gomath.Float32frombits(binary.LittleEndian.Uint32(gs.Vertices[off:]))
	}

	// vertex 2 is the line end: position then contour weight {0,1}
	base := 2 * int(GPUVertexStride)
	assert.Equal(t, float32(1), readFloat(base))
	assert.Equal(t, float32(1), readFloat(base+4))
	assert.Equal(t, float32(0), readFloat(base+8))
	assert.Equal(t, float32(1), readFloat(base+12))

	// vertex 3 is the control point, weight {1,0}
	base = 3 * int(GPUVertexStride)
	assert.Equal(t, float32(1), readFloat(base+8))
	assert.Equal(t, float32(0), readFloat(base+12))
}

func TestBuildGeometryStreamSharedAcrossGroups(t *testing.T) {
	mesh := testMesh()
	packet := &renderer.FramePacket{
		Groups: []renderer.DrawGroup{
			{Mesh: mesh, Instances: []instance.Raw{testRaw()}},
			{Mesh: mesh, Instances: []instance.Raw{testRaw(), testRaw(), testRaw()}},
		},
	}
	gs := BuildGeometryStream(packet)
	require.Len(t, gs.Draws, 4)

	// second group's draws step past the first group's vertices,
	// indices and instances
	assert.Equal(t, int32(4), gs.Draws[2].VertexOffset)
	assert.Equal(t, uint32(6), gs.Draws[2].IndexFirst)
	assert.Equal(t, uint32(1), gs.Draws[2].InstanceFirst)
	assert.Equal(t, uint32(3), gs.Draws[2].InstanceCount)
}

func TestBuildGeometryStreamSkipsEmpty(t *testing.T) {
	packet := &renderer.FramePacket{
		Groups: []renderer.DrawGroup{
			{Mesh: nil, Instances: []instance.Raw{testRaw()}},
			{Mesh: &outline.Mesh{}, Instances: []instance.Raw{testRaw()}},
			{Mesh: testMesh(), Instances: nil},
		},
	}
	gs := BuildGeometryStream(packet)
	assert.True(t, gs.Empty())
	assert.Empty(t, gs.Vertices)
	assert.Empty(t, gs.Instances)
}

func TestInstancePackingMatchesRawStride(t *testing.T) {
	raw := testRaw()
	raw.Motion = 0xDEADBEEF
	raw.StartTime = 42
	raw.Gain = 1.5
	raw.Duration = 900

	b := appendInstance(nil, raw)
	require.Len(t, b, instance.RawStride)

	assert.Equal(t, uint32(0xDEADBEEF), binary.LittleEndian.Uint32(b[76:]))
	assert.Equal(t, uint32(42), binary.LittleEndian.Uint32(b[80:]))
	assert.Equal(t, float32(1.5), gomath.Float32frombits(binary.LittleEndian.Uint32(b[84:])))
	assert.Equal(t, uint32(900), binary.LittleEndian.Uint32(b[88:]))
}
