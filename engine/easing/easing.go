package easing

import (
	m "math"
)

// Curve names one of the reference easing families. Every curve maps
// [0,1] -> [0,1] with f(0)=0 and f(1)=1 in its ease-in form; Back and
// Elastic overshoot in between, which is their defining look.
type Curve uint8

const (
	Linear Curve = iota
	Sine
	Quad
	Cubic
	Quart
	Quint
	Expo
	Circ
	Back
	Elastic
	Bounce
)

const CurveCount = 11

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case Sine:
		return "sine"
	case Quad:
		return "quad"
	case Cubic:
		return "cubic"
	case Quart:
		return "quart"
	case Quint:
		return "quint"
	case Expo:
		return "expo"
	case Circ:
		return "circ"
	case Back:
		return "back"
	case Elastic:
		return "elastic"
	case Bounce:
		return "bounce"
	}
	return "unknown"
}

// Back overshoot constants. The animations are compared visually against
// the common reference curves, so these are not tunable.
const (
	backC1 = 1.70158
	backC3 = backC1 + 1.0
)

// easeIn evaluates the curve in its ease-in form. Caller guarantees t in (0,1).
func (c Curve) easeIn(t float64) float64 {
	switch c {
	case Linear:
		return t
	case Sine:
		return 1.0 - m.Cos(t*m.Pi/2.0)
	case Quad:
		return t * t
	case Cubic:
		return t * t * t
	case Quart:
		return t * t * t * t
	case Quint:
		return t * t * t * t * t
	case Expo:
		return m.Pow(2.0, 10.0*t-10.0)
	case Circ:
		return 1.0 - m.Sqrt(1.0-t*t)
	case Back:
		return backC3*t*t*t - backC1*t*t
	case Elastic:
		const c4 = (2.0 * m.Pi) / 3.0
		return -m.Pow(2.0, 10.0*t-10.0) * m.Sin((t*10.0-10.75)*c4)
	case Bounce:
		return 1.0 - bounceOut(1.0-t)
	}
	return t
}

// bounceOut is the 4-interval quadratic reference bounce in ease-out form.
func bounceOut(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1.0/d1:
		return n1 * t * t
	case t < 2.0/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// Evaluate computes the interpolation gain for normalized time t.
//
// Boundary policy: t<=0 yields 0 and t>=1 yields 1 regardless of curve.
// With only easeIn set the curve applies directly; with only easeOut set
// its time-reversed complement applies; with both set the curve applies
// symmetrically about t=0.5 (continuous, not necessarily differentiable).
// With neither flag the result is t itself, whatever the named curve.
func Evaluate(curve Curve, t float32, easeIn, easeOut bool) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	x := float64(t)
	switch {
	case easeIn && easeOut:
		if x < 0.5 {
			return float32(curve.easeIn(2.0*x) / 2.0)
		}
		return float32(1.0 - curve.easeIn(2.0-2.0*x)/2.0)
	case easeIn:
		return float32(curve.easeIn(x))
	case easeOut:
		return float32(1.0 - curve.easeIn(1.0-x))
	default:
		return t
	}
}
