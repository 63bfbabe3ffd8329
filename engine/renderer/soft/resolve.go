package soft

import (
	stdmath "math"
	"math/bits"

	"github.com/vecglyph/vecglyph/engine/math"
)

// Layer is the resolved glyph layer: premultiplied-nothing straight
// color plus alpha per pixel, ready for composition.
type Layer struct {
	width  int
	height int
	Color  [][3]float32
	Alpha  []float32
}

func NewLayer(width, height uint32) *Layer {
	n := int(width) * int(height)
	return &Layer{
		width:  int(width),
		height: int(height),
		Color:  make([][3]float32, n),
		Alpha:  make([]float32, n),
	}
}

func (l *Layer) Width() int  { return l.width }
func (l *Layer) Height() int { return l.height }

// Resolver turns the overlap record into the glyph layer. It owns the
// temporal parity history; with temporalFrames == 0 the resolve is purely
// spatial.
type Resolver struct {
	width          int
	height         int
	temporalFrames int
	history        []uint32
}

func NewResolver(width, height uint32, temporalFrames int) *Resolver {
	return &Resolver{
		width:          int(width),
		height:         int(height),
		temporalFrames: temporalFrames,
		history:        make([]uint32, int(width)*int(height)),
	}
}

// Resize drops the parity history along with the old target size.
func (r *Resolver) Resize(width, height uint32) {
	r.width = int(width)
	r.height = int(height)
	r.history = make([]uint32, r.width*r.height)
}

// wave folds a summed coverage onto [0,1] with the period-2 triangle
// wave. Integer totals reproduce parity exactly: odd sums map to 1,
// even sums to 0; fractional edge coverage lands in between.
func wave(c float32) float32 {
	m := float32(stdmath.Mod(float64(c), 2))
	return 1 - math.Abs(m-1)
}

// Resolve reads the finished accumulator and fills the layer. Each call
// advances the temporal history by one frame.
func (r *Resolver) Resolve(acc *Accumulator, layer *Layer) {
	mask := uint32(0)
	if r.temporalFrames > 0 {
		mask = (uint32(1) << r.temporalFrames) - 1
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			i := y*r.width + x
			inside := acc.Count(x, y)%2 == 1

			var alpha float32
			if acc.Samples(x, y) > 0 {
				alpha = wave(acc.Coverage(x, y))
			} else if inside {
				alpha = 1
			}

			if mask != 0 {
				prior := bits.OnesCount32(r.history[i] & mask)
				alpha = (alpha + float32(prior)) / float32(r.temporalFrames+1)
				bit := uint32(0)
				if inside {
					bit = 1
				}
				r.history[i] = r.history[i]<<1 | bit
			}

			layer.Alpha[i] = alpha
			layer.Color[i] = acc.MeanColor(x, y)
		}
	}
}
