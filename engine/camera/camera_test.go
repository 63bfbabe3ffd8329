package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vecglyph/vecglyph/engine/math"
)

func TestEasedValueSettles(t *testing.T) {
	e := NewEasedValue(0)
	e.Set(10, 1000)
	assert.InDelta(t, 0, e.At(1000), 1e-4)
	assert.InDelta(t, 10, e.At(1300), 1e-4)
	assert.InDelta(t, 10, e.At(99999), 1e-4)
}

func TestEasedValueGlidesBetween(t *testing.T) {
	e := NewEasedValue(0)
	e.Set(10, 1000)
	mid := e.At(1150)
	assert.Greater(t, mid, float32(0))
	// back ease-out overshoots, so mid-glide may exceed the target
	assert.Less(t, mid, float32(12))
}

func TestEasedValueSamplingIsPure(t *testing.T) {
	e := NewEasedValue(0)
	e.Set(10, 1000)
	a := e.At(1100)
	_ = e.At(1250)
	assert.Equal(t, a, e.At(1100))
}

func TestEasedValueRetargetMidGlide(t *testing.T) {
	e := NewEasedValue(0)
	e.Set(10, 1000)
	at := e.At(1150)
	e.Set(-5, 1150)
	// the new glide starts where the old one was
	assert.InDelta(t, at, e.At(1150), 1e-3)
	assert.InDelta(t, -5, e.At(1450), 1e-4)
}

func TestControllerForwardApproachesTarget(t *testing.T) {
	c := New(math.NewVec3(0, 0, 10), math.NewVec3Zero(), 1)
	cc := NewController(1)
	cc.Process(OpForward)
	cc.Update(c, 0)
	cc.Reset()

	// after the ease settles, the eye moved one speed unit closer
	eye := c.Eye(10000)
	assert.InDelta(t, 9, eye.Z, 1e-3)
}

func TestControllerOrbitKeepsDistance(t *testing.T) {
	c := New(math.NewVec3(0, 0, 10), math.NewVec3Zero(), 1)
	cc := NewController(1)
	cc.Process(OpRight)
	cc.Update(c, 0)

	eye := c.Eye(10000)
	assert.InDelta(t, 10, eye.Sub(c.Target()).Length(), 1e-3)
	assert.NotZero(t, eye.X)
}

func TestControllerLookAt(t *testing.T) {
	c := New(math.NewVec3(0, 0, 10), math.NewVec3Zero(), 1)
	cc := NewController(1)
	cc.LookAt(math.NewVec3(5, 0, 0))
	cc.Update(c, 0)
	assert.Equal(t, math.NewVec3(5, 0, 0), c.Target())
}

func TestViewProjectionTransformsTargetToCenter(t *testing.T) {
	c := New(math.NewVec3(0, 0, 10), math.NewVec3Zero(), 1)
	vp := c.ViewProjection(10000)
	clip := math.NewVec4FromVec3(math.NewVec3Zero(), 1).Transform(vp)
	// the look-at target projects onto the view axis
	assert.InDelta(t, 0, clip.X/clip.W, 1e-4)
	assert.InDelta(t, 0, clip.Y/clip.W, 1e-4)
}

func TestSetAspectIgnoresZeroHeight(t *testing.T) {
	c := New(math.NewVec3(0, 0, 10), math.NewVec3Zero(), 1)
	c.SetAspect(200, 100)
	assert.Equal(t, float32(2), c.aspect)
	c.SetAspect(200, 0)
	assert.Equal(t, float32(2), c.aspect)
}
