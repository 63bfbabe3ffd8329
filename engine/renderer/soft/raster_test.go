package soft

import (
	stdrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
)

// screenTriangles converts a tessellated mesh whose coordinates are
// already in pixel space into rasterizer input.
type screenTriangle struct {
	kind       triangleKind
	v0, v1, v2 screenVertex
}

func meshTriangles(m *outline.Mesh) []screenTriangle {
	conv := func(i uint32) screenVertex {
		v := m.Vertices[i]
		w := v.Role.Wait()
		return screenVertex{x: v.Position.X, y: v.Position.Y, u: w[0], v: w[1]}
	}
	var out []screenTriangle
	for t := 0; t+2 < len(m.BezierFill); t += 3 {
		out = append(out, screenTriangle{triBezierFill, conv(m.BezierFill[t]), conv(m.BezierFill[t+1]), conv(m.BezierFill[t+2])})
	}
	for t := 0; t+2 < len(m.BezierComplement); t += 3 {
		out = append(out, screenTriangle{triBezierComplement, conv(m.BezierComplement[t]), conv(m.BezierComplement[t+1]), conv(m.BezierComplement[t+2])})
	}
	for t := 0; t+2 < len(m.LineFill); t += 3 {
		out = append(out, screenTriangle{triLineFill, conv(m.LineFill[t]), conv(m.LineFill[t+1]), conv(m.LineFill[t+2])})
	}
	return out
}

func rasterizeAll(acc *Accumulator, tris []screenTriangle) {
	white := [3]float32{1, 1, 1}
	for _, t := range tris {
		rasterize(acc, t.kind, t.v0, t.v1, t.v2, white)
	}
}

func squarePx(x0, y0, x1, y1 float32) outline.Contour {
	pts := [][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	var segs []outline.Segment
	for i := range pts {
		j := (i + 1) % len(pts)
		segs = append(segs, outline.Segment{
			Kind:  outline.SegmentLine,
			Start: math.NewVec2(pts[i][0], pts[i][1]),
			End:   math.NewVec2(pts[j][0], pts[j][1]),
		})
	}
	return outline.Contour{Segments: segs}
}

// pointInPolysEvenOdd is the reference even-odd fill: a horizontal ray
// crossing count over every polygon edge.
func pointInPolysEvenOdd(polys [][][2]float32, x, y float32) bool {
	crossings := 0
	for _, poly := range polys {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			if (a[1] > y) != (b[1] > y) {
				t := (y - a[1]) / (b[1] - a[1])
				if a[0]+t*(b[0]-a[0]) > x {
					crossings++
				}
			}
		}
	}
	return crossings%2 == 1
}

func TestRingParityMatchesScanlineReference(t *testing.T) {
	// two nested squares: the ring fills, the hole stays empty, by
	// overlap parity alone
	outer := squarePx(10.3, 10.3, 49.7, 49.7)
	inner := squarePx(20.3, 20.3, 39.7, 39.7)
	mesh := outline.Tessellate([]outline.Contour{outer, inner}, math.NewVec2(0, 0), 1)
	require.False(t, mesh.Empty())

	acc := NewAccumulator(64, 64)
	rasterizeAll(acc, meshTriangles(mesh))

	polys := [][][2]float32{
		{{10.3, 10.3}, {49.7, 10.3}, {49.7, 49.7}, {10.3, 49.7}},
		{{20.3, 20.3}, {39.7, 20.3}, {39.7, 39.7}, {20.3, 39.7}},
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			want := pointInPolysEvenOdd(polys, float32(x)+0.5, float32(y)+0.5)
			got := acc.Count(x, y)%2 == 1
			assert.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}
}

func TestRingSpotChecks(t *testing.T) {
	outer := squarePx(10.3, 10.3, 49.7, 49.7)
	inner := squarePx(20.3, 20.3, 39.7, 39.7)
	mesh := outline.Tessellate([]outline.Contour{outer, inner}, math.NewVec2(0, 0), 1)

	acc := NewAccumulator(64, 64)
	rasterizeAll(acc, meshTriangles(mesh))

	assert.Equal(t, int32(1), acc.Count(15, 30)%2, "ring is inside")
	assert.Equal(t, int32(0), acc.Count(30, 30)%2, "hole is outside")
	assert.Equal(t, int32(0), acc.Count(5, 5)%2, "exterior is outside")
}

func TestCountOrderIndependent(t *testing.T) {
	outer := squarePx(10.3, 10.3, 49.7, 49.7)
	inner := squarePx(20.3, 20.3, 39.7, 39.7)
	mesh := outline.Tessellate([]outline.Contour{outer, inner}, math.NewVec2(0, 0), 1)
	tris := meshTriangles(mesh)

	ref := NewAccumulator(64, 64)
	rasterizeAll(ref, tris)

	rng := stdrand.New(stdrand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]screenTriangle, len(tris))
		copy(shuffled, tris)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		acc := NewAccumulator(64, 64)
		rasterizeAll(acc, shuffled)
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				require.Equal(t, ref.Count(x, y), acc.Count(x, y), "pixel (%d,%d) trial %d", x, y, trial)
			}
		}
	}
}

func TestCoverageOrderIndependent(t *testing.T) {
	// integer fixed-point accumulation makes float coverage exact under
	// permutation, not just within an epsilon
	mesh := outline.Tessellate([]outline.Contour{squarePx(5.4, 5.4, 20.6, 20.6)}, math.NewVec2(0, 0), 1)
	tris := meshTriangles(mesh)

	ref := NewAccumulator(32, 32)
	rasterizeAll(ref, tris)

	reversed := make([]screenTriangle, len(tris))
	for i, tr := range tris {
		reversed[len(tris)-1-i] = tr
	}
	acc := NewAccumulator(32, 32)
	rasterizeAll(acc, reversed)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			require.Equal(t, ref.Coverage(x, y), acc.Coverage(x, y))
		}
	}
}

func TestDegenerateTriangleIgnored(t *testing.T) {
	acc := NewAccumulator(16, 16)
	v := screenVertex{x: 4, y: 4}
	rasterize(acc, triLineFill, v, v, screenVertex{x: 10, y: 10}, [3]float32{1, 1, 1})
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Zero(t, acc.Count(x, y))
		}
	}
}

func TestSharedEdgePixelCountedOnce(t *testing.T) {
	// two triangles sharing the diagonal of an integer-aligned square:
	// every interior pixel must be counted exactly once
	a := screenVertex{x: 2, y: 2}
	b := screenVertex{x: 10, y: 2}
	c := screenVertex{x: 10, y: 10}
	d := screenVertex{x: 2, y: 10}
	acc := NewAccumulator(16, 16)
	white := [3]float32{1, 1, 1}
	rasterize(acc, triBezierComplement, a, b, c, white)
	rasterize(acc, triBezierComplement, a, c, d, white)
	for y := 3; y < 9; y++ {
		for x := 3; x < 9; x++ {
			assert.Equal(t, int32(1), acc.Count(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestBezierFillRespectsImplicitCurve(t *testing.T) {
	// curve triangle with start (10,50), end (90,50), control (50,0):
	// fill lies between chord and curve
	s := screenVertex{x: 10, y: 50, u: 0, v: 0}
	e := screenVertex{x: 90, y: 50, u: 0, v: 1}
	c := screenVertex{x: 50, y: 0, u: 1, v: 0}
	acc := NewAccumulator(100, 60)
	rasterize(acc, triBezierFill, s, e, c, [3]float32{1, 1, 1})

	// midway between chord midpoint and the curve apex at (50,25):
	// inside the curve region
	assert.Equal(t, int32(1), acc.Count(50, 30))
	// near the control point: inside the triangle but outside the curve
	assert.Equal(t, int32(0), acc.Count(50, 6))
	// outside the triangle entirely
	assert.Equal(t, int32(0), acc.Count(5, 5))
}

func TestBezierFillOriginTriangleContributesNothing(t *testing.T) {
	// the {origin, start, control} triangle carries v=0 at every corner,
	// so the implicit (u/2+v)^2 - v is never negative
	o := screenVertex{x: 50, y: 90, u: 0, v: 0}
	s := screenVertex{x: 10, y: 50, u: 0, v: 0}
	c := screenVertex{x: 50, y: 0, u: 1, v: 0}
	acc := NewAccumulator(100, 100)
	rasterize(acc, triBezierFill, o, s, c, [3]float32{1, 1, 1})
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			assert.Zero(t, acc.Count(x, y), "pixel (%d,%d)", x, y)
		}
	}
}
