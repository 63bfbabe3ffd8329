package fontsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
)

func regular(t *testing.T) (*Registry, *Source) {
	t.Helper()
	reg := NewRegistry()
	src, err := reg.Register(goregular.TTF)
	require.NoError(t, err)
	return reg, src
}

func TestRegisterAssignsIdentity(t *testing.T) {
	reg, src := regular(t)
	assert.NotEqual(t, [16]byte{}, [16]byte(src.ID()))
	assert.NotEmpty(t, src.Name())
	assert.Same(t, src, reg.ByID(src.ID()))
}

func TestRegisterRejectsGarbage(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register([]byte("not a font"))
	assert.Error(t, err)
}

func TestMeshProducesTriangles(t *testing.T) {
	_, src := regular(t)
	m, err := src.Mesh('O')
	require.NoError(t, err)
	assert.False(t, m.Empty())
	// a glyph with curves must produce bezier triangles
	assert.NotEmpty(t, m.BezierFill)
}

func TestMeshIsNormalized(t *testing.T) {
	_, src := regular(t)
	m, err := src.Mesh('H')
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.Less(t, v.Position.X, float32(1))
		assert.Greater(t, v.Position.X, float32(-1))
		assert.Less(t, v.Position.Y, float32(1))
		assert.Greater(t, v.Position.Y, float32(-1))
	}
}

func TestMeshDeterministic(t *testing.T) {
	_, src := regular(t)
	a, err := src.Mesh('g')
	require.NoError(t, err)
	b, err := src.Mesh('g')
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMeshGlyphNotFound(t *testing.T) {
	_, src := regular(t)
	_, err := src.Mesh('\U000E0041') // tag block, not in any text font
	assert.ErrorIs(t, err, ErrGlyphNotFound)
}

func TestAdvancePositive(t *testing.T) {
	_, src := regular(t)
	adv, err := src.Advance('m')
	require.NoError(t, err)
	assert.Greater(t, adv, float32(0))
	assert.Less(t, adv, float32(2))
}

func fpt(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
}

func moveTo(x, y int) sfnt.Segment {
	return sfnt.Segment{Op: sfnt.SegmentOpMoveTo, Args: [3]fixed.Point26_6{fpt(x, y)}}
}

func lineTo(x, y int) sfnt.Segment {
	return sfnt.Segment{Op: sfnt.SegmentOpLineTo, Args: [3]fixed.Point26_6{fpt(x, y)}}
}

func TestContoursSkipRepeatedPoints(t *testing.T) {
	_, src := regular(t)
	cs := src.contours([]sfnt.Segment{
		moveTo(0, 0),
		lineTo(100, 0),
		lineTo(100, 0), // repeated point from the font's integer grid
		lineTo(0, 100),
	})
	require.Len(t, cs, 1)
	assert.Len(t, cs[0].Segments, 2)
	assert.NoError(t, cs[0].Validate())
}

func TestContoursSplitOnMove(t *testing.T) {
	_, src := regular(t)
	cs := src.contours([]sfnt.Segment{
		moveTo(0, 0), lineTo(100, 0), lineTo(0, 100),
		moveTo(200, 200), lineTo(300, 200), lineTo(200, 300),
	})
	require.Len(t, cs, 2)
	for _, c := range cs {
		require.Len(t, c.Segments, 2)
		// the pen chain keeps segments contiguous
		assert.Equal(t, c.Segments[0].End, c.Segments[1].Start)
	}
}

func TestContoursCubicFlattensToQuadratics(t *testing.T) {
	_, src := regular(t)
	cs := src.contours([]sfnt.Segment{
		moveTo(0, 0),
		{Op: sfnt.SegmentOpCubeTo, Args: [3]fixed.Point26_6{fpt(0, 100), fpt(100, 100), fpt(100, 0)}},
		lineTo(0, 0),
	})
	require.Len(t, cs, 1)
	prev := cs[0].Segments[0].Start
	for _, s := range cs[0].Segments {
		assert.Equal(t, prev, s.Start)
		prev = s.End
	}
	assert.Equal(t, outline.SegmentQuadraticBezier, cs[0].Segments[0].Kind)
}

func TestDegenerateContourYieldsEmptyMesh(t *testing.T) {
	_, src := regular(t)
	// a stray single-segment contour fails validation, rejecting the glyph
	cs := src.contours([]sfnt.Segment{
		moveTo(0, 0), lineTo(100, 0),
	})
	m := outline.Tessellate(cs, math.NewVec2(0, 0), 1)
	assert.True(t, m.Empty())
}

func TestLookupFallsThrough(t *testing.T) {
	reg, src := regular(t)
	found, err := reg.Lookup('A')
	require.NoError(t, err)
	assert.Same(t, src, found)

	_, err = reg.Lookup('\U000E0041')
	assert.ErrorIs(t, err, ErrGlyphNotFound)
}
