package outline

import (
	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/math"
)

// Builder is a path sink that accumulates tessellated triangles. The font
// collaborator drives it through MoveTo/LineTo/QuadTo/Close; Tessellate
// drives it from explicit Contour values.
//
// Triangulation per contour, relative to the contour origin (the MoveTo
// point):
//
//   - line segment a..b       -> line-fill {origin, a, b}
//   - bezier segment s..c..e  -> bezier-fill {origin, s, c},
//     bezier-fill {s, e, c}, and the chord {origin, s, e} as a
//     bezier-complement triangle.
//
// The implicit test zeroes out the {origin, s, c} triangle (all its
// weights carry v=0), and the {s, e, c} triangle adds the area between
// chord and curve. When the control point lies inside the fan the same
// region is counted a second time and parity removes it, so concave and
// convex segments both resolve correctly without any orientation test.
type Builder struct {
	vertices         []Vertex
	bezierFill       []uint32
	bezierComplement []uint32
	lineFill         []uint32

	origin  math.Vec2
	current math.Vec2
	started bool
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) push(p math.Vec2, role VertexRole) uint32 {
	b.vertices = append(b.vertices, Vertex{Position: p, Role: role})
	return uint32(len(b.vertices) - 1)
}

// MoveTo starts a new contour at p.
func (b *Builder) MoveTo(p math.Vec2) {
	b.origin = p
	b.current = p
	b.started = true
}

// LineTo appends a line segment from the current point to p.
func (b *Builder) LineTo(p math.Vec2) {
	if !b.started {
		b.MoveTo(p)
		return
	}
	o := b.push(b.origin, RoleOriginLine)
	s := b.push(b.current, RoleStartLine)
	e := b.push(p, RoleEndLine)
	b.lineFill = append(b.lineFill, o, s, e)
	b.current = p
}

// QuadTo appends a quadratic bezier from the current point through
// control to p.
func (b *Builder) QuadTo(control, p math.Vec2) {
	if !b.started {
		b.MoveTo(p)
		return
	}
	o := b.push(b.origin, RoleOriginBezier)
	s := b.push(b.current, RoleStartBezier)
	c := b.push(control, RoleControl)
	e := b.push(p, RoleEndBezier)
	b.bezierFill = append(b.bezierFill, o, s, c)
	b.bezierFill = append(b.bezierFill, s, e, c)
	b.bezierComplement = append(b.bezierComplement, o, s, e)
	b.current = p
}

// CubicTo appends a cubic bezier by flattening it to quadratics first.
func (b *Builder) CubicTo(c1, c2, p math.Vec2) {
	quads := FlattenCubic(b.current, c1, c2, p)
	for _, q := range quads {
		b.QuadTo(q.Control, q.End)
	}
}

// Close ends the current contour. Closing back to the origin is implied
// by the fan construction, so this only resets the pen.
func (b *Builder) Close() {
	b.started = false
}

// Build normalizes all positions around center, scaled by unitEm, and
// returns the finished mesh.
func (b *Builder) Build(center math.Vec2, unitEm float32) *Mesh {
	if unitEm == 0 {
		unitEm = 1
	}
	vertices := make([]Vertex, len(b.vertices))
	for i, v := range b.vertices {
		vertices[i] = Vertex{
			Position: math.NewVec2((v.Position.X-center.X)/unitEm, (v.Position.Y-center.Y)/unitEm),
			Role:     v.Role,
		}
	}
	return &Mesh{
		Vertices:         vertices,
		BezierFill:       append([]uint32(nil), b.bezierFill...),
		BezierComplement: append([]uint32(nil), b.bezierComplement...),
		LineFill:         append([]uint32(nil), b.lineFill...),
	}
}

// Tessellate converts a full set of glyph contours into a mesh. Any
// degenerate contour rejects the whole glyph: an empty mesh is returned
// and a warning logged, never an error; a bad glyph must not abort the
// frame.
func Tessellate(contours []Contour, center math.Vec2, unitEm float32) *Mesh {
	for i := range contours {
		if err := contours[i].Validate(); err != nil {
			core.LogWarn("rejecting glyph outline: contour %d: %v", i, err)
			return &Mesh{}
		}
	}
	b := NewBuilder()
	for _, c := range contours {
		b.MoveTo(c.Segments[0].Start)
		for _, s := range c.Segments {
			switch s.Kind {
			case SegmentQuadraticBezier:
				b.QuadTo(s.Control, s.End)
			default:
				b.LineTo(s.End)
			}
		}
		b.Close()
	}
	return b.Build(center, unitEm)
}
