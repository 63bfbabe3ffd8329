// Package camera provides the eased look-at camera driving the glyph
// scene's view projection.
package camera

import (
	"github.com/vecglyph/vecglyph/engine/easing"
	"github.com/vecglyph/vecglyph/engine/math"
)

// easeDuration is how long a camera move takes to settle, in ticks.
const easeDuration = 300

// EasedValue is a scalar that glides from its previous value to a new
// target over a fixed duration with a back ease-out. It is a pure
// function of the tick it is sampled at, so sampling never mutates it
// and dropped frames cannot desynchronize the glide.
type EasedValue struct {
	from      float32
	to        float32
	startTime uint32
}

func NewEasedValue(v float32) EasedValue {
	return EasedValue{from: v, to: v}
}

// Set retargets the value, starting a new glide at tick now from
// wherever the previous glide was at that moment.
func (e *EasedValue) Set(target float32, now uint32) {
	if target == e.to {
		return
	}
	e.from = e.At(now)
	e.to = target
	e.startTime = now
}

// At samples the glide at tick now.
func (e *EasedValue) At(now uint32) float32 {
	t := easing.Position(now, e.startTime, easeDuration, false, false)
	g := easing.Evaluate(easing.Back, t, false, true)
	return e.from + (e.to-e.from)*g
}

// Target returns the value the glide is heading to.
func (e *EasedValue) Target() float32 {
	return e.to
}

// EasedPoint3 glides each axis independently.
type EasedPoint3 struct {
	X, Y, Z EasedValue
}

func NewEasedPoint3(p math.Vec3) EasedPoint3 {
	return EasedPoint3{
		X: NewEasedValue(p.X),
		Y: NewEasedValue(p.Y),
		Z: NewEasedValue(p.Z),
	}
}

func (e *EasedPoint3) Set(p math.Vec3, now uint32) {
	e.X.Set(p.X, now)
	e.Y.Set(p.Y, now)
	e.Z.Set(p.Z, now)
}

func (e *EasedPoint3) At(now uint32) math.Vec3 {
	return math.NewVec3(e.X.At(now), e.Y.At(now), e.Z.At(now))
}

func (e *EasedPoint3) Target() math.Vec3 {
	return math.NewVec3(e.X.Target(), e.Y.Target(), e.Z.Target())
}
