package outline

import (
	"github.com/vecglyph/vecglyph/engine/math"
)

// VertexRole tags a vertex with the part it plays in its triangle. The
// role decides both the triangle category the vertex belongs to and the
// weight attribute the fragment stage interpolates for the implicit
// quadratic test.
type VertexRole uint8

const (
	RoleOriginBezier VertexRole = iota
	RoleOriginLine
	RoleStartBezier
	RoleStartLine
	RoleEndBezier
	RoleEndLine
	RoleControl
)

// Wait returns the (u, v) weight pair for the role. Interpolated across
// a bezier-fill triangle these feed the implicit test (u*0.5+v)^2 - v,
// which is zero exactly on the quadratic curve. Line start and end both
// carry v=1 so that v interpolates to 1 along the whole contour edge of
// a line-fill triangle, giving the fragment stage a measure of the
// distance to that edge for anti-aliasing.
func (r VertexRole) Wait() [2]float32 {
	switch r {
	case RoleControl:
		return [2]float32{1, 0}
	case RoleEndBezier, RoleEndLine, RoleStartLine:
		return [2]float32{0, 1}
	default:
		return [2]float32{0, 0}
	}
}

// Vertex is one tessellated glyph vertex in normalized glyph-local space.
type Vertex struct {
	Position math.Vec2
	Role     VertexRole
}

// Mesh is the immutable triangle mesh for one glyph. Index slices hold
// triples into Vertices, one slice per triangle category:
//
//   - BezierFill: curve triangles, filled where the interpolated implicit
//     quadratic is negative, anti-aliased.
//   - BezierComplement: chord fan triangles of bezier segments, flat
//     filled, no anti-aliasing.
//   - LineFill: fan triangles of line segments, flat filled, anti-aliased.
//
// Meshes are owned by the glyph cache and shared by reference; nothing
// mutates them after Build.
type Mesh struct {
	Vertices         []Vertex
	BezierFill       []uint32
	BezierComplement []uint32
	LineFill         []uint32
}

// Empty reports whether the mesh draws nothing.
func (m *Mesh) Empty() bool {
	return len(m.BezierFill) == 0 && len(m.BezierComplement) == 0 && len(m.LineFill) == 0
}

// TriangleCount returns the total number of triangles over all categories.
func (m *Mesh) TriangleCount() int {
	return (len(m.BezierFill) + len(m.BezierComplement) + len(m.LineFill)) / 3
}
