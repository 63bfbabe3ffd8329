package camera

import (
	"github.com/vecglyph/vecglyph/engine/math"
)

// clipCorrection remaps the projection's z range from [-1,1] to the
// [0,1] the render backends expect.
var clipCorrection = math.Mat4{Data: [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}}

// Camera is a perspective look-at camera whose eye point eases toward
// its target position instead of jumping.
type Camera struct {
	eye    EasedPoint3
	target math.Vec3
	up     math.Vec3

	aspect float32
	fovy   float32
	znear  float32
	zfar   float32
}

func New(eye math.Vec3, target math.Vec3, aspect float32) *Camera {
	return &Camera{
		eye:    NewEasedPoint3(eye),
		target: target,
		up:     math.NewVec3Up(),
		aspect: aspect,
		fovy:   45,
		znear:  0.1,
		zfar:   1000,
	}
}

// Eye samples the eased eye position at tick now.
func (c *Camera) Eye(now uint32) math.Vec3 {
	return c.eye.At(now)
}

func (c *Camera) Target() math.Vec3 {
	return c.target
}

// SetAspect updates the projection after a resize.
func (c *Camera) SetAspect(width, height uint32) {
	if height == 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// ViewProjection builds the combined matrix at tick now.
func (c *Camera) ViewProjection(now uint32) math.Mat4 {
	view := math.NewMat4LookAt(c.eye.At(now), c.target, c.up)
	proj := math.NewMat4Perspective(math.DegToRad(c.fovy), c.aspect, c.znear, c.zfar)
	return clipCorrection.Mul(proj).Mul(view)
}

// Operation is one discrete camera command.
type Operation uint8

const (
	OpNone Operation = iota
	OpUp
	OpDown
	OpLeft
	OpRight
	OpForward
	OpBackward
)

// Controller accumulates operations between frames and applies them to
// the camera in Update.
type Controller struct {
	speed float32

	up, down, left, right, forward, backward bool

	nextTarget *math.Vec3
}

func NewController(speed float32) *Controller {
	return &Controller{speed: speed}
}

func (cc *Controller) Process(op Operation) {
	switch op {
	case OpUp:
		cc.up = true
	case OpDown:
		cc.down = true
	case OpLeft:
		cc.left = true
	case OpRight:
		cc.right = true
	case OpForward:
		cc.forward = true
	case OpBackward:
		cc.backward = true
	}
}

// LookAt retargets the camera on the next Update.
func (cc *Controller) LookAt(target math.Vec3) {
	t := target
	cc.nextTarget = &t
}

func (cc *Controller) Reset() {
	cc.up = false
	cc.down = false
	cc.left = false
	cc.right = false
	cc.forward = false
	cc.backward = false
}

// Update applies the accumulated operations to the camera at tick now.
// Orbit operations keep the eye at its current distance from the target.
func (cc *Controller) Update(c *Camera, now uint32) {
	if cc.nextTarget != nil {
		c.target = *cc.nextTarget
		cc.nextTarget = nil
	}
	eye := c.eye.Target()
	forward := c.target.Sub(eye)
	forwardNorm := forward.Normalized()
	forwardMag := forward.Length()

	if cc.forward && forwardMag > cc.speed {
		eye = eye.Add(forwardNorm.MulScalar(cc.speed))
	}
	if cc.backward {
		eye = eye.Sub(forwardNorm.MulScalar(cc.speed))
	}

	right := forwardNorm.Cross(c.up)
	forward = c.target.Sub(eye)
	forwardMag = forward.Length()

	if cc.right {
		dir := forward.Add(right.MulScalar(cc.speed)).Normalized()
		eye = c.target.Sub(dir.MulScalar(forwardMag))
	}
	if cc.left {
		dir := forward.Sub(right.MulScalar(cc.speed)).Normalized()
		eye = c.target.Sub(dir.MulScalar(forwardMag))
	}

	if cc.up {
		eye = eye.Add(c.up.MulScalar(cc.speed))
	}
	if cc.down {
		eye = eye.Sub(c.up.MulScalar(cc.speed))
	}

	c.eye.Set(eye, now)
}
