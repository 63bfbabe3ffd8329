// Package soft is the CPU rendering path. It implements the same
// overlap-count pipeline as the GPU backend with plain goroutines and
// sync/atomic, which makes it the deterministic conformance reference
// for the algorithm as well as the off-screen export path.
package soft

import (
	"sync/atomic"
)

// alphaScale converts coverage fractions to the fixed-point domain the
// accumulator sums in. Integer addition keeps coverage sums associative
// and exact, so permuting triangle submission order cannot change any
// accumulated value.
const alphaScale = 1 << 16

// Accumulator is the per-frame overlap record: one count, coverage sum,
// sample count and coverage-weighted color sum per pixel. It is the only
// resource written concurrently during a frame, always via atomic add.
type Accumulator struct {
	width  int
	height int

	count        []int32
	alphaTotal   []int64
	alphaSamples []int32
	colorR       []int64
	colorG       []int64
	colorB       []int64
}

func NewAccumulator(width, height uint32) *Accumulator {
	n := int(width) * int(height)
	return &Accumulator{
		width:        int(width),
		height:       int(height),
		count:        make([]int32, n),
		alphaTotal:   make([]int64, n),
		alphaSamples: make([]int32, n),
		colorR:       make([]int64, n),
		colorG:       make([]int64, n),
		colorB:       make([]int64, n),
	}
}

func (a *Accumulator) Width() int  { return a.width }
func (a *Accumulator) Height() int { return a.height }

// Reset zeroes the record. This is the frame's explicit cleanup pass; it
// runs before any overlap writes, never concurrently with them.
func (a *Accumulator) Reset() {
	clear(a.count)
	clear(a.alphaTotal)
	clear(a.alphaSamples)
	clear(a.colorR)
	clear(a.colorG)
	clear(a.colorB)
}

// Add records one fragment at (x, y): parity count when the fragment is
// inside, plus its coverage-weighted alpha and color contribution.
// Out-of-target fragments are dropped.
func (a *Accumulator) Add(x, y int, inside bool, coverage float32, color [3]float32) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	i := y*a.width + x
	if inside {
		atomic.AddInt32(&a.count[i], 1)
	}
	if coverage <= 0 {
		return
	}
	c := int64(coverage * alphaScale)
	atomic.AddInt64(&a.alphaTotal[i], c)
	atomic.AddInt32(&a.alphaSamples[i], 1)
	atomic.AddInt64(&a.colorR[i], int64(color[0]*coverage*alphaScale))
	atomic.AddInt64(&a.colorG[i], int64(color[1]*coverage*alphaScale))
	atomic.AddInt64(&a.colorB[i], int64(color[2]*coverage*alphaScale))
}

// Count returns the overlap count at (x, y).
func (a *Accumulator) Count(x, y int) int32 {
	return atomic.LoadInt32(&a.count[y*a.width+x])
}

// Coverage returns the summed coverage at (x, y) as a float.
func (a *Accumulator) Coverage(x, y int) float32 {
	return float32(atomic.LoadInt64(&a.alphaTotal[y*a.width+x])) / alphaScale
}

// Samples returns how many fragments contributed coverage at (x, y).
func (a *Accumulator) Samples(x, y int) int32 {
	return atomic.LoadInt32(&a.alphaSamples[y*a.width+x])
}

// MeanColor returns the coverage-weighted average color at (x, y).
func (a *Accumulator) MeanColor(x, y int) [3]float32 {
	i := y*a.width + x
	w := atomic.LoadInt64(&a.alphaTotal[i])
	if w == 0 {
		return [3]float32{}
	}
	return [3]float32{
		float32(atomic.LoadInt64(&a.colorR[i])) / float32(w),
		float32(atomic.LoadInt64(&a.colorG[i])) / float32(w),
		float32(atomic.LoadInt64(&a.colorB[i])) / float32(w),
	}
}
