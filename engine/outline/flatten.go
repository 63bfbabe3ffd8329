package outline

import (
	"github.com/vecglyph/vecglyph/engine/math"
)

// Quadratic is one quadratic bezier produced by cubic flattening.
type Quadratic struct {
	Control math.Vec2
	End     math.Vec2
}

// Tolerance for the cubic-to-quadratic approximation, in em-square
// units relative to a 1.0 em glyph. Outlines are resolution independent
// so this does not need to track the render target size.
const flattenTolerance = 1.0 / 256.0

// FlattenCubic approximates a cubic bezier with a chain of quadratics.
// The single-quadratic approximation uses the midpoint control
// (3*(c1+c2) - p0 - p3) / 4; the cubic is subdivided at t=0.5 until the
// approximation error bound falls under the tolerance.
func FlattenCubic(p0, c1, c2, p3 math.Vec2) []Quadratic {
	return flattenCubic(p0, c1, c2, p3, 0, nil)
}

func flattenCubic(p0, c1, c2, p3 math.Vec2, depth int, out []Quadratic) []Quadratic {
	// Error bound for the midpoint approximation: sqrt(3)/36 * |p3 - 3*c2 + 3*c1 - p0|.
	ex := p3.X - 3*c2.X + 3*c1.X - p0.X
	ey := p3.Y - 3*c2.Y + 3*c1.Y - p0.Y
	err := math.NewVec2(ex, ey).Length() * (1.7320508 / 36.0)

	if err <= flattenTolerance || depth >= 8 {
		control := math.NewVec2(
			(3*(c1.X+c2.X)-p0.X-p3.X)/4,
			(3*(c1.Y+c2.Y)-p0.Y-p3.Y)/4,
		)
		return append(out, Quadratic{Control: control, End: p3})
	}

	// de Casteljau split at t = 0.5
	m01 := midpoint(p0, c1)
	m12 := midpoint(c1, c2)
	m23 := midpoint(c2, p3)
	m012 := midpoint(m01, m12)
	m123 := midpoint(m12, m23)
	mid := midpoint(m012, m123)

	out = flattenCubic(p0, m01, m012, mid, depth+1, out)
	return flattenCubic(mid, m123, m23, p3, depth+1, out)
}

func midpoint(a, b math.Vec2) math.Vec2 {
	return math.NewVec2((a.X+b.X)*0.5, (a.Y+b.Y)*0.5)
}
