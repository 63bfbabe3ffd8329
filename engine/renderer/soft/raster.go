package soft

import (
	"github.com/vecglyph/vecglyph/engine/math"
)

// derivEpsilon floors the screen-space derivative used for curve
// anti-aliasing, so a degenerate gradient cannot produce non-finite
// coverage values.
const derivEpsilon = 1e-6

type triangleKind uint8

const (
	triBezierFill triangleKind = iota
	triBezierComplement
	triLineFill
)

// screenVertex is one triangle corner in pixel coordinates with its
// interpolated curve weight.
type screenVertex struct {
	x, y float32
	u, v float32
}

func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// onEdgeOwned decides whether a pixel center lying exactly on the edge
// a->b belongs to this triangle. The rule only has to be consistent:
// the adjacent triangle sees the same edge reversed, so exactly one of
// the two claims the pixel and parity stays exact.
func onEdgeOwned(ax, ay, bx, by float32) bool {
	dy := by - ay
	if dy != 0 {
		return dy > 0
	}
	return bx < ax
}

// rasterize scans one screen-space triangle into the accumulator.
//
// Coverage rules per category: bezier-fill pixels are covered when the
// implicit quadratic d = (u/2+v)^2 - v is negative, with a linear ramp
// over d's screen-space footprint softening the curve edge;
// bezier-complement pixels are covered flat, no anti-aliasing; line-fill
// pixels get a ramp against the contour edge. Only covered pixels touch
// the accumulator.
func rasterize(acc *Accumulator, kind triangleKind, v0, v1, v2 screenVertex, color [3]float32) {
	area := edgeFn(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	minX := int(math.Min(v0.x, math.Min(v1.x, v2.x)))
	maxX := int(math.Max(v0.x, math.Max(v1.x, v2.x))) + 1
	minY := int(math.Min(v0.y, math.Min(v1.y, v2.y)))
	maxY := int(math.Max(v0.y, math.Max(v1.y, v2.y))) + 1
	minX = math.Max(minX, 0)
	minY = math.Max(minY, 0)
	maxX = math.Min(maxX, acc.Width()-1)
	maxY = math.Min(maxY, acc.Height()-1)

	// edge lengths for pixel-space distance to the triangle boundary
	l01 := math.NewVec2(v1.x-v0.x, v1.y-v0.y).Length()
	l12 := math.NewVec2(v2.x-v1.x, v2.y-v1.y).Length()
	l20 := math.NewVec2(v0.x-v2.x, v0.y-v2.y).Length()
	if l01 == 0 || l12 == 0 || l20 == 0 {
		return
	}

	for py := minY; py <= maxY; py++ {
		cy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float32(px) + 0.5

			w12 := edgeFn(v1.x, v1.y, v2.x, v2.y, cx, cy)
			w20 := edgeFn(v2.x, v2.y, v0.x, v0.y, cx, cy)
			w01 := edgeFn(v0.x, v0.y, v1.x, v1.y, cx, cy)

			if !insideEdge(w12, v1.x, v1.y, v2.x, v2.y) ||
				!insideEdge(w20, v2.x, v2.y, v0.x, v0.y) ||
				!insideEdge(w01, v0.x, v0.y, v1.x, v1.y) {
				continue
			}

			switch kind {
			case triBezierComplement:
				acc.Add(px, py, true, 1, color)

			case triLineFill:
				// ramp only against the contour edge between the second
				// and third corner; the other two edges are interior fan
				// chords shared with neighboring triangles and must stay
				// hard or seams open up inside the glyph
				sd := w12 / l12
				coverage := math.Clamp(0.5+sd, 0, 1)
				acc.Add(px, py, true, coverage, color)

			case triBezierFill:
				d := implicitAt(v0, v1, v2, area, cx, cy)
				if d >= 0 {
					continue
				}
				dx := implicitAt(v0, v1, v2, area, cx+1, cy) - d
				dy := implicitAt(v0, v1, v2, area, cx, cy+1) - d
				fw := math.Max(math.Abs(dx)+math.Abs(dy), float32(derivEpsilon))
				coverage := math.Clamp(0.5-d/fw, 0, 1)
				acc.Add(px, py, true, coverage, color)
			}
		}
	}
}

func insideEdge(w, ax, ay, bx, by float32) bool {
	if w > 0 {
		return true
	}
	if w < 0 {
		return false
	}
	return onEdgeOwned(ax, ay, bx, by)
}

// implicitAt interpolates the curve weights at (x, y) and evaluates the
// implicit quadratic. The weights are linear over the triangle, so
// barycentric interpolation is exact.
func implicitAt(v0, v1, v2 screenVertex, area, x, y float32) float32 {
	b0 := edgeFn(v1.x, v1.y, v2.x, v2.y, x, y) / area
	b1 := edgeFn(v2.x, v2.y, v0.x, v0.y, x, y) / area
	b2 := edgeFn(v0.x, v0.y, v1.x, v1.y, x, y) / area
	u := b0*v0.u + b1*v1.u + b2*v2.u
	v := b0*v0.v + b1*v1.v + b2*v2.v
	h := u*0.5 + v
	return h*h - v
}
