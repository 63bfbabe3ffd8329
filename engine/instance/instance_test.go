package instance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecglyph/vecglyph/engine/easing"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/motion"
)

func movingAttrs(targets motion.Target) Attributes {
	a := DefaultAttributes()
	a.Motion = motion.Builder().EaseIn(easing.Linear).Targets(targets).Build()
	a.StartTime = 1000
	a.Duration = 500
	a.Gain = 2
	return a
}

func TestEffectiveGainLinearMidpoint(t *testing.T) {
	a := movingAttrs(motion.MoveXPlus)
	// linear easing, half the duration elapsed: half the configured gain
	assert.InDelta(t, 1.0, a.EffectiveGain(1250), 1e-6)
	assert.InDelta(t, 0.0, a.EffectiveGain(1000), 1e-6)
	assert.InDelta(t, 2.0, a.EffectiveGain(1500), 1e-6)
	assert.InDelta(t, 2.0, a.EffectiveGain(9999), 1e-6)
}

func TestEffectiveGainStaticIsZero(t *testing.T) {
	a := DefaultAttributes()
	a.Gain = 5
	assert.Equal(t, float32(0), a.EffectiveGain(12345))
}

func TestRawEncodesPackedMotion(t *testing.T) {
	a := movingAttrs(motion.MoveYMinus)
	r := a.Raw()
	assert.Equal(t, a.Motion.Pack(), r.Motion)
	assert.Equal(t, uint32(1000), r.StartTime)
	assert.Equal(t, uint32(500), r.Duration)
	assert.Equal(t, float32(2), r.Gain)
	assert.Equal(t, a.Color, r.Color)
	// identity base transform
	assert.Equal(t, math.NewMat4Identity().Data, r.Model)
}

func TestRawStrideMatchesLayout(t *testing.T) {
	assert.Equal(t, 23*4, RawStride)
}

func TestModelMatrixTranslation(t *testing.T) {
	a := movingAttrs(motion.MoveXPlus)
	m := a.ModelMatrix(1250) // effective gain 1.0
	assert.InDelta(t, 1.0, m.Data[12], 1e-5)
	assert.InDelta(t, 0.0, m.Data[13], 1e-5)
}

func TestModelMatrixStretchCollapse(t *testing.T) {
	a := movingAttrs(motion.StretchXMinus)
	a.Gain = 1
	m := a.ModelMatrix(1500) // fully eased: x scale 1-1 = 0
	assert.InDelta(t, 0.0, m.Data[0], 1e-5)
	assert.InDelta(t, 1.0, m.Data[5], 1e-5)
}

func TestModelMatrixRotationHalfTurn(t *testing.T) {
	a := movingAttrs(motion.RotateZPlus)
	a.Gain = 1
	m := a.ModelMatrix(1500) // gain 1: half revolution around z
	assert.InDelta(t, -1.0, m.Data[0], 1e-4)
	assert.InDelta(t, -1.0, m.Data[5], 1e-4)
}

func TestModelMatrixStaticSkipsMotion(t *testing.T) {
	a := DefaultAttributes()
	a.Position = math.NewVec3(3, -2, 0)
	m := a.ModelMatrix(555)
	assert.Equal(t, a.Raw().Model, m.Data)
}

func TestDistanceFactorScalesMotion(t *testing.T) {
	a := movingAttrs(motion.MoveYPlus)
	a.Motion.UseXDistance = true
	a.Position = math.NewVec3(3, 0, 0)
	m := a.ModelMatrix(1250) // gain 1.0 * |x|=3
	assert.InDelta(t, 3.0, m.Data[13], 1e-4)
}

var testFont = uuid.MustParse("0c9f12aa-b7cf-49b1-93f0-15b0f0a6f35a")

func TestStreamBuilderGroupsByChar(t *testing.T) {
	b := NewStreamBuilder()
	snap := Snapshot{Font: testFont, Chars: []Char{
		{Char: 'a', Attributes: DefaultAttributes()},
		{Char: 'b', Attributes: DefaultAttributes()},
		{Char: 'a', Attributes: DefaultAttributes()},
	}}
	s := b.Build(snap)
	require.Len(t, s.Groups, 2)
	assert.Equal(t, 'a', s.Groups[0].Char)
	assert.Len(t, s.Groups[0].Instances, 2)
	assert.Len(t, s.Groups[1].Instances, 1)
	assert.Equal(t, 3, s.Total())
}

func TestStreamBuilderRejectsZeroDurationMotion(t *testing.T) {
	a := movingAttrs(motion.MoveXPlus)
	a.Duration = 0
	b := NewStreamBuilder()
	s := b.Build(Snapshot{Font: testFont, Chars: []Char{{Char: 'x', Attributes: a}}})
	require.Len(t, s.Groups, 1)
	r := s.Groups[0].Instances[0]
	assert.Equal(t, uint32(0), r.Motion)
	assert.Equal(t, float32(0), r.Gain)
}

func TestStreamBuilderFreshEachFrame(t *testing.T) {
	b := NewStreamBuilder()
	snap := Snapshot{Font: testFont, Chars: []Char{{Char: 'q', Attributes: DefaultAttributes()}}}
	s1 := b.Build(snap)
	s2 := b.Build(snap)
	assert.NotSame(t, s1, s2)
	assert.Len(t, s2.Groups, 1)
	assert.Len(t, s2.Groups[0].Instances, 1)
}
