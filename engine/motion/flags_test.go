package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vecglyph/vecglyph/engine/easing"
)

func TestPackBitPositions(t *testing.T) {
	assert.Equal(t, uint32(1<<31), Flags{HasMotion: true}.Pack())
	assert.Equal(t, uint32(1<<30), Flags{EaseIn: true}.Pack())
	assert.Equal(t, uint32(1<<29), Flags{EaseOut: true}.Pack())
	assert.Equal(t, uint32(1<<28), Flags{Loop: true}.Pack())
	assert.Equal(t, uint32(1<<27), Flags{TurnBack: true}.Pack())
	assert.Equal(t, uint32(1<<26), Flags{UseXDistance: true}.Pack())
	assert.Equal(t, uint32(1<<25), Flags{UseYDistance: true}.Pack())
	assert.Equal(t, uint32(1<<24), Flags{UseXYDistance: true}.Pack())
	assert.Equal(t, uint32(1<<23), Flags{IgnoreCamera: true}.Pack())
	assert.Equal(t, uint32(easing.Bounce)<<16, Flags{Curve: easing.Bounce}.Pack())
	assert.Equal(t, uint32(MoveZMinus), Flags{Targets: MoveZMinus}.Pack())
}

func TestZeroMotionPacksToZero(t *testing.T) {
	assert.Equal(t, uint32(0), ZeroMotion.Pack())
	assert.Equal(t, ZeroMotion, Unpack(0))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	f := Flags{
		HasMotion:     true,
		EaseIn:        true,
		EaseOut:       true,
		Loop:          true,
		TurnBack:      true,
		UseXYDistance: true,
		IgnoreCamera:  true,
		Curve:         easing.Elastic,
		Targets:       MoveXPlus | RotateZMinus | StretchYPlus,
	}
	assert.Equal(t, f, Unpack(f.Pack()))
}

func TestUnpackIgnoresReservedBits(t *testing.T) {
	// bits 22-20 are reserved and must not leak into any field
	v := Unpack(0x7 << 20)
	assert.Equal(t, ZeroMotion, v)
}

func TestTargetsAreDistinctBits(t *testing.T) {
	all := []Target{
		MoveXPlus, MoveXMinus, MoveYPlus, MoveYMinus, MoveZPlus, MoveZMinus,
		RotateXPlus, RotateXMinus, RotateYPlus, RotateYMinus, RotateZPlus, RotateZMinus,
		StretchXPlus, StretchXMinus, StretchYPlus, StretchYMinus,
	}
	var seen Target
	for _, tgt := range all {
		assert.Zero(t, seen&tgt, "overlapping target bit %016b", tgt)
		seen |= tgt
	}
	assert.Equal(t, Target(0xFFFF), seen)
}

func TestBuilder(t *testing.T) {
	f := Builder().
		EaseInOut(easing.Back).
		Loop().
		TurnBack().
		UseXDistance().
		Targets(MoveYPlus).
		Targets(RotateZPlus).
		Build()

	assert.True(t, f.HasMotion)
	assert.True(t, f.EaseIn)
	assert.True(t, f.EaseOut)
	assert.True(t, f.Loop)
	assert.True(t, f.TurnBack)
	assert.True(t, f.UseXDistance)
	assert.Equal(t, easing.Back, f.Curve)
	assert.Equal(t, MoveYPlus|RotateZPlus, f.Targets)
}

func TestBuilderZeroIsStatic(t *testing.T) {
	assert.Equal(t, ZeroMotion, Builder().Build())
}
