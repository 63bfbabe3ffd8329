package easing

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allCurves = []Curve{
	Linear, Sine, Quad, Cubic, Quart, Quint, Expo, Circ, Back, Elastic, Bounce,
}

func TestEvaluateBoundaries(t *testing.T) {
	for _, c := range allCurves {
		for _, in := range []bool{false, true} {
			for _, out := range []bool{false, true} {
				assert.Equal(t, float32(0), Evaluate(c, 0, in, out), c.String())
				assert.Equal(t, float32(0), Evaluate(c, -0.5, in, out), c.String())
				assert.Equal(t, float32(1), Evaluate(c, 1, in, out), c.String())
				assert.Equal(t, float32(1), Evaluate(c, 1.5, in, out), c.String())
			}
		}
	}
}

func TestEvaluateNoFlagsIsIdentity(t *testing.T) {
	for _, c := range allCurves {
		for _, tt := range []float32{0.1, 0.25, 0.5, 0.77} {
			assert.Equal(t, tt, Evaluate(c, tt, false, false), c.String())
		}
	}
}

func TestEvaluateMonotoneCurvesStayInRange(t *testing.T) {
	// Back and Elastic overshoot by definition; every other curve must
	// stay inside [0,1] over the whole domain.
	monotone := []Curve{Linear, Sine, Quad, Cubic, Quart, Quint, Expo, Circ, Bounce}
	for _, c := range monotone {
		for i := 0; i <= 100; i++ {
			tt := float32(i) / 100
			for _, in := range []bool{false, true} {
				for _, out := range []bool{false, true} {
					v := Evaluate(c, tt, in, out)
					assert.GreaterOrEqual(t, v, float32(0), "%s t=%v", c, tt)
					assert.LessOrEqual(t, v, float32(1), "%s t=%v", c, tt)
				}
			}
		}
	}
}

func TestEvaluateEaseOutMirrorsEaseIn(t *testing.T) {
	for _, c := range allCurves {
		for i := 1; i < 100; i++ {
			tt := float32(i) / 100
			in := Evaluate(c, tt, true, false)
			out := Evaluate(c, 1-tt, false, true)
			assert.InDelta(t, 1-in, out, 1e-5, c.String())
		}
	}
}

func TestEvaluateInOutSymmetricAboutHalf(t *testing.T) {
	for _, c := range allCurves {
		for i := 1; i < 50; i++ {
			tt := float32(i) / 100
			lo := Evaluate(c, tt, true, true)
			hi := Evaluate(c, 1-tt, true, true)
			assert.InDelta(t, 1.0, float64(lo+hi), 1e-5, c.String())
		}
		assert.InDelta(t, 0.5, Evaluate(c, 0.5, true, true), 1e-5, c.String())
	}
}

func TestEvaluateReferenceValues(t *testing.T) {
	// Spot checks against the common reference formulas.
	assert.InDelta(t, 0.25, Evaluate(Quad, 0.5, true, false), 1e-6)
	assert.InDelta(t, 0.125, Evaluate(Cubic, 0.5, true, false), 1e-6)
	assert.InDelta(t, 1.0-stdmath.Cos(stdmath.Pi/4), float64(Evaluate(Sine, 0.5, true, false)), 1e-6)
	assert.InDelta(t, stdmath.Pow(2, -5), float64(Evaluate(Expo, 0.5, true, false)), 1e-6)
	// back: c3*t^3 - c1*t^2 at t=0.5
	assert.InDelta(t, 2.70158*0.125-1.70158*0.25, float64(Evaluate(Back, 0.5, true, false)), 1e-6)
	// bounce ease-out, first interval: n1*t^2
	assert.InDelta(t, 7.5625*0.2*0.2, float64(Evaluate(Bounce, 0.2, false, true)), 1e-6)
}

func TestBackAndElasticOvershoot(t *testing.T) {
	under := false
	for i := 1; i < 100; i++ {
		if Evaluate(Back, float32(i)/100, true, false) < 0 {
			under = true
		}
	}
	assert.True(t, under, "back ease-in dips below 0")

	over := false
	for i := 1; i < 100; i++ {
		if Evaluate(Elastic, float32(i)/100, false, true) > 1 {
			over = true
		}
	}
	assert.True(t, over, "elastic ease-out rings above 1")
}

func TestPositionClamps(t *testing.T) {
	assert.Equal(t, float32(0), Position(100, 100, 1000, false, false))
	assert.Equal(t, float32(0.5), Position(600, 100, 1000, false, false))
	assert.Equal(t, float32(1), Position(1100, 100, 1000, false, false))
	assert.Equal(t, float32(1), Position(99999, 100, 1000, false, false))
}

func TestPositionZeroDuration(t *testing.T) {
	assert.Equal(t, float32(1), Position(5, 5, 0, false, false))
	assert.Equal(t, float32(1), Position(5, 5, 0, true, true))
}

func TestPositionTurnBack(t *testing.T) {
	assert.Equal(t, float32(0.5), Position(350, 100, 1000, true, false))
	assert.Equal(t, float32(1), Position(600, 100, 1000, true, false))
	assert.InDelta(t, 0.5, Position(850, 100, 1000, true, false), 1e-6)
	// after one period it is done, back at rest
	assert.Equal(t, float32(0), Position(1200, 100, 1000, true, false))
	assert.Equal(t, float32(0), Position(99999, 100, 1000, true, false))
}

func TestPositionLoopAlternates(t *testing.T) {
	// first period climbs, second descends, then repeats
	assert.InDelta(t, 0.25, Position(350, 100, 1000, false, true), 1e-6)
	assert.InDelta(t, 0.75, Position(1350, 100, 1000, false, true), 1e-6)
	assert.InDelta(t, 0.25, Position(2350, 100, 1000, false, true), 1e-6)
}

func TestPositionLoopTurnBackPingPongsEveryPeriod(t *testing.T) {
	assert.InDelta(t, 0.5, Position(350, 100, 1000, true, true), 1e-6)
	assert.InDelta(t, 0.5, Position(850, 100, 1000, true, true), 1e-6)
	assert.InDelta(t, 0.5, Position(1350, 100, 1000, true, true), 1e-6)
	assert.InDelta(t, 1.0, Position(600, 100, 1000, true, true), 1e-6)
}

func TestPositionSurvivesTickWrap(t *testing.T) {
	// start just before the 32-bit tick counter wraps, sample after
	start := uint32(0xFFFFFF00)
	now := start + 500 // wraps past zero
	assert.InDelta(t, 0.5, Position(now, start, 1000, false, false), 1e-6)
}

func TestPositionIsPure(t *testing.T) {
	a := Position(777, 100, 1000, true, true)
	b := Position(777, 100, 1000, true, true)
	assert.Equal(t, a, b)
}
