package soft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaveParity(t *testing.T) {
	assert.InDelta(t, 0, wave(0), 1e-6)
	assert.InDelta(t, 1, wave(1), 1e-6)
	assert.InDelta(t, 0, wave(2), 1e-6)
	assert.InDelta(t, 1, wave(3), 1e-6)
	assert.InDelta(t, 0.5, wave(0.5), 1e-6)
	assert.InDelta(t, 0.5, wave(1.5), 1e-6)
	assert.InDelta(t, 0.25, wave(2.25), 1e-6)
}

func TestResolveParityFill(t *testing.T) {
	acc := NewAccumulator(4, 1)
	white := [3]float32{1, 1, 1}
	acc.Add(0, 0, true, 1, white) // count 1: inside
	acc.Add(1, 0, true, 1, white)
	acc.Add(1, 0, true, 1, white) // count 2: a hole
	acc.Add(2, 0, true, 0.5, white)

	layer := NewLayer(4, 1)
	NewResolver(4, 1, 0).Resolve(acc, layer)

	assert.InDelta(t, 1, layer.Alpha[0], 1e-4)
	assert.InDelta(t, 0, layer.Alpha[1], 1e-4)
	assert.InDelta(t, 0.5, layer.Alpha[2], 1e-4)
	assert.InDelta(t, 0, layer.Alpha[3], 1e-4)
}

func TestResolveMeanColor(t *testing.T) {
	acc := NewAccumulator(1, 1)
	acc.Add(0, 0, true, 1, [3]float32{1, 0, 0})
	acc.Add(0, 0, true, 1, [3]float32{0, 1, 0})
	acc.Add(0, 0, true, 1, [3]float32{0, 0, 1})

	layer := NewLayer(1, 1)
	NewResolver(1, 1, 0).Resolve(acc, layer)
	for ch := 0; ch < 3; ch++ {
		assert.InDelta(t, 1.0/3.0, layer.Color[0][ch], 1e-3)
	}
}

func TestTemporalResolveAveragesParityHistory(t *testing.T) {
	const frames = 4
	r := NewResolver(1, 1, frames)
	layer := NewLayer(1, 1)
	white := [3]float32{1, 1, 1}

	inside := func() *Accumulator {
		acc := NewAccumulator(1, 1)
		acc.Add(0, 0, true, 1, white)
		return acc
	}
	outside := func() *Accumulator {
		return NewAccumulator(1, 1)
	}

	// warm the history with four inside frames
	for i := 0; i < frames; i++ {
		r.Resolve(inside(), layer)
	}
	r.Resolve(inside(), layer)
	assert.InDelta(t, 1, layer.Alpha[0], 1e-4, "stable pixel stays at full alpha")

	// the pixel goes empty: alpha decays over the history window
	// instead of snapping to zero
	r.Resolve(outside(), layer)
	assert.InDelta(t, float32(frames)/(frames+1), layer.Alpha[0], 1e-4)

	for i := 0; i < frames; i++ {
		r.Resolve(outside(), layer)
	}
	assert.InDelta(t, 0, layer.Alpha[0], 1e-4, "history fully drained")
}

func TestTemporalZeroFramesIsPureSpatial(t *testing.T) {
	r := NewResolver(1, 1, 0)
	layer := NewLayer(1, 1)
	acc := NewAccumulator(1, 1)
	acc.Add(0, 0, true, 1, [3]float32{1, 1, 1})
	r.Resolve(acc, layer)
	r.Resolve(NewAccumulator(1, 1), layer)
	assert.InDelta(t, 0, layer.Alpha[0], 1e-6, "no carryover without temporal frames")
}

func TestResolverResizeDropsHistory(t *testing.T) {
	r := NewResolver(1, 1, 8)
	layer := NewLayer(1, 1)
	acc := NewAccumulator(1, 1)
	acc.Add(0, 0, true, 1, [3]float32{1, 1, 1})
	r.Resolve(acc, layer)

	r.Resize(1, 1)
	r.Resolve(NewAccumulator(1, 1), layer)
	assert.InDelta(t, 0, layer.Alpha[0], 1e-6)
}
