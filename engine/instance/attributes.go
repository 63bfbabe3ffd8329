// Package instance builds the per-frame GPU instance stream.
//
// One instance record describes one visible character: its transform,
// color, packed motion descriptor and timing. Records are rebuilt from
// the layout snapshot every frame and never mutated in place; a motion
// in progress survives frame boundaries only because its start time keeps
// being reproduced.
package instance

import (
	"github.com/vecglyph/vecglyph/engine/easing"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/motion"
)

// Attributes is the host-side description of one character instance.
type Attributes struct {
	Position      math.Vec3
	Rotation      math.Quaternion
	WorldScale    [2]float32
	InstanceScale [2]float32
	Color         [3]float32
	Motion        motion.Flags
	StartTime     uint32
	Gain          float32
	Duration      uint32
}

// DefaultAttributes returns a static instance at the origin.
func DefaultAttributes() Attributes {
	return Attributes{
		Rotation:      math.NewQuatIdentity(),
		WorldScale:    [2]float32{1, 1},
		InstanceScale: [2]float32{1, 1},
		Color:         [3]float32{1, 1, 1},
		Motion:        motion.ZeroMotion,
	}
}

// Raw is the GPU upload form: 23 float-sized fields, std430-compatible,
// stepped per instance by the vertex stage.
type Raw struct {
	Model     [16]float32
	Color     [3]float32
	Motion    uint32
	StartTime uint32
	Gain      float32
	Duration  uint32
}

// RawStride is the byte size of one Raw record.
const RawStride = 23 * 4

// baseModel composes world scale, translation, rotation and per-instance
// scale, in that order.
func (a Attributes) baseModel() math.Mat4 {
	world := math.NewMat4Scale(math.NewVec3(a.WorldScale[0], a.WorldScale[1], 1))
	local := math.NewMat4Scale(math.NewVec3(a.InstanceScale[0], a.InstanceScale[1], 1))
	return world.
		Mul(math.NewMat4Translation(a.Position)).
		Mul(a.Rotation.ToMat4()).
		Mul(local)
}

// Raw encodes the attributes for upload. The motion transform itself is
// not baked into the model matrix here: GPU backends evaluate it per
// frame in the vertex stage from the packed descriptor.
func (a Attributes) Raw() Raw {
	return Raw{
		Model:     a.baseModel().Data,
		Color:     a.Color,
		Motion:    a.Motion.Pack(),
		StartTime: a.StartTime,
		Gain:      a.Gain,
		Duration:  a.Duration,
	}
}

// EffectiveGain evaluates the instance's easing at wall-clock tick now.
func (a Attributes) EffectiveGain(now uint32) float32 {
	if !a.Motion.HasMotion {
		return 0
	}
	t := easing.Position(now, a.StartTime, a.Duration, a.Motion.TurnBack, a.Motion.Loop)
	return a.Gain * easing.Evaluate(a.Motion.Curve, t, a.Motion.EaseIn, a.Motion.EaseOut)
}

// ModelMatrix returns the full per-frame transform at tick now, motion
// applied.
func (a Attributes) ModelMatrix(now uint32) math.Mat4 {
	return MotionTransform(a.Raw(), now)
}

// distanceFactor modulates motion magnitude by the instance's distance
// from the layout origin, read off the base transform's translation.
func distanceFactor(f motion.Flags, model [16]float32) float32 {
	switch {
	case f.UseXYDistance:
		return math.NewVec2(model[12], model[13]).Length()
	case f.UseXDistance:
		return math.Abs(model[12])
	case f.UseYDistance:
		return math.Abs(model[13])
	}
	return 1
}

// MotionTransform computes the per-frame transform of one GPU record at
// tick now. This mirrors what the GPU vertex stage computes from the
// same record, so the software backend and the tests share one
// reference for the math.
//
// Per target bit, with g the effective gain times the distance factor:
// translation moves g units along the signed axis, rotation turns g half
// revolutions around it, and stretch scales the planar axis by 1+g
// (clamped at zero, so a minus stretch of gain 1 collapses the axis).
func MotionTransform(r Raw, now uint32) math.Mat4 {
	model := math.Mat4{Data: r.Model}
	f := motion.Unpack(r.Motion)
	if !f.HasMotion {
		return model
	}
	pos := easing.Position(now, r.StartTime, r.Duration, f.TurnBack, f.Loop)
	g := r.Gain * easing.Evaluate(f.Curve, pos, f.EaseIn, f.EaseOut)
	g *= distanceFactor(f, r.Model)
	if g == 0 {
		return model
	}
	t := f.Targets

	var offset math.Vec3
	if t&motion.MoveXPlus != 0 {
		offset.X += g
	}
	if t&motion.MoveXMinus != 0 {
		offset.X -= g
	}
	if t&motion.MoveYPlus != 0 {
		offset.Y += g
	}
	if t&motion.MoveYMinus != 0 {
		offset.Y -= g
	}
	if t&motion.MoveZPlus != 0 {
		offset.Z += g
	}
	if t&motion.MoveZMinus != 0 {
		offset.Z -= g
	}

	angle := g * math.Pi
	rot := math.NewQuatIdentity()
	applyRot := func(axis math.Vec3, sign float32) {
		rot = rot.Mul(math.NewQuatFromAxisAngle(axis, sign*angle, true))
	}
	if t&motion.RotateXPlus != 0 {
		applyRot(math.NewVec3(1, 0, 0), 1)
	}
	if t&motion.RotateXMinus != 0 {
		applyRot(math.NewVec3(1, 0, 0), -1)
	}
	if t&motion.RotateYPlus != 0 {
		applyRot(math.NewVec3(0, 1, 0), 1)
	}
	if t&motion.RotateYMinus != 0 {
		applyRot(math.NewVec3(0, 1, 0), -1)
	}
	if t&motion.RotateZPlus != 0 {
		applyRot(math.NewVec3(0, 0, 1), 1)
	}
	if t&motion.RotateZMinus != 0 {
		applyRot(math.NewVec3(0, 0, 1), -1)
	}

	stretch := math.NewVec3One()
	if t&motion.StretchXPlus != 0 {
		stretch.X += g
	}
	if t&motion.StretchXMinus != 0 {
		stretch.X -= g
	}
	if t&motion.StretchYPlus != 0 {
		stretch.Y += g
	}
	if t&motion.StretchYMinus != 0 {
		stretch.Y -= g
	}
	stretch.X = math.Max(stretch.X, 0)
	stretch.Y = math.Max(stretch.Y, 0)

	return math.NewMat4Translation(offset).
		Mul(model).
		Mul(rot.ToMat4()).
		Mul(math.NewMat4Scale(stretch))
}
