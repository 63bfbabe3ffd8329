// Package motion defines the per-instance animation descriptor.
//
// On the host side the descriptor is an explicit tagged record; a compact
// 32-bit form exists only at the GPU upload boundary. Pack and Unpack are
// the single canonical encode/decode pair shared by host and shader-side
// logic, so the two can never drift.
//
// Bit layout of the packed form:
//
//	31    has_motion
//	30    ease_in
//	29    ease_out
//	28    loop
//	27    turn_back
//	26    use_x_distance
//	25    use_y_distance
//	24    use_xy_distance
//	23    ignore_camera
//	19-16 easing curve selector
//	15-0  motion targets
package motion

import (
	"github.com/vecglyph/vecglyph/engine/easing"
)

// Target selects the directions a motion applies to. Translation and
// rotation are signed per axis; stretch is signed per planar axis.
type Target uint16

const (
	MoveXPlus Target = 1 << iota
	MoveXMinus
	MoveYPlus
	MoveYMinus
	MoveZPlus
	MoveZMinus
	RotateXPlus
	RotateXMinus
	RotateYPlus
	RotateYMinus
	RotateZPlus
	RotateZMinus
	StretchXPlus
	StretchXMinus
	StretchYPlus
	StretchYMinus
)

// Flags is the full animation descriptor for one character instance.
type Flags struct {
	HasMotion     bool
	EaseIn        bool
	EaseOut       bool
	Loop          bool
	TurnBack      bool
	UseXDistance  bool
	UseYDistance  bool
	UseXYDistance bool
	IgnoreCamera  bool
	Curve         easing.Curve
	Targets       Target
}

// ZeroMotion is the static descriptor.
var ZeroMotion = Flags{}

const (
	bitHasMotion     = 1 << 31
	bitEaseIn        = 1 << 30
	bitEaseOut       = 1 << 29
	bitLoop          = 1 << 28
	bitTurnBack      = 1 << 27
	bitUseXDistance  = 1 << 26
	bitUseYDistance  = 1 << 25
	bitUseXYDistance = 1 << 24
	bitIgnoreCamera  = 1 << 23
	curveShift       = 16
	curveMask        = 0xF << curveShift
	targetMask       = 0xFFFF
)

// Pack encodes the descriptor into its 32-bit wire form.
func (f Flags) Pack() uint32 {
	var v uint32
	set := func(on bool, bit uint32) {
		if on {
			v |= bit
		}
	}
	set(f.HasMotion, bitHasMotion)
	set(f.EaseIn, bitEaseIn)
	set(f.EaseOut, bitEaseOut)
	set(f.Loop, bitLoop)
	set(f.TurnBack, bitTurnBack)
	set(f.UseXDistance, bitUseXDistance)
	set(f.UseYDistance, bitUseYDistance)
	set(f.UseXYDistance, bitUseXYDistance)
	set(f.IgnoreCamera, bitIgnoreCamera)
	v |= (uint32(f.Curve) << curveShift) & curveMask
	v |= uint32(f.Targets) & targetMask
	return v
}

// Unpack decodes the 32-bit wire form.
func Unpack(v uint32) Flags {
	return Flags{
		HasMotion:     v&bitHasMotion != 0,
		EaseIn:        v&bitEaseIn != 0,
		EaseOut:       v&bitEaseOut != 0,
		Loop:          v&bitLoop != 0,
		TurnBack:      v&bitTurnBack != 0,
		UseXDistance:  v&bitUseXDistance != 0,
		UseYDistance:  v&bitUseYDistance != 0,
		UseXYDistance: v&bitUseXYDistance != 0,
		IgnoreCamera:  v&bitIgnoreCamera != 0,
		Curve:         easing.Curve((v & curveMask) >> curveShift),
		Targets:       Target(v & targetMask),
	}
}

// FlagsBuilder assembles a Flags value. The zero builder produces ZeroMotion.
type FlagsBuilder struct {
	flags Flags
}

func Builder() *FlagsBuilder {
	return &FlagsBuilder{}
}

func (b *FlagsBuilder) EaseIn(c easing.Curve) *FlagsBuilder {
	b.flags.HasMotion = true
	b.flags.EaseIn = true
	b.flags.Curve = c
	return b
}

func (b *FlagsBuilder) EaseOut(c easing.Curve) *FlagsBuilder {
	b.flags.HasMotion = true
	b.flags.EaseOut = true
	b.flags.Curve = c
	return b
}

func (b *FlagsBuilder) EaseInOut(c easing.Curve) *FlagsBuilder {
	b.flags.HasMotion = true
	b.flags.EaseIn = true
	b.flags.EaseOut = true
	b.flags.Curve = c
	return b
}

func (b *FlagsBuilder) Loop() *FlagsBuilder {
	b.flags.Loop = true
	return b
}

func (b *FlagsBuilder) TurnBack() *FlagsBuilder {
	b.flags.TurnBack = true
	return b
}

func (b *FlagsBuilder) UseXDistance() *FlagsBuilder {
	b.flags.UseXDistance = true
	return b
}

func (b *FlagsBuilder) UseYDistance() *FlagsBuilder {
	b.flags.UseYDistance = true
	return b
}

func (b *FlagsBuilder) UseXYDistance() *FlagsBuilder {
	b.flags.UseXYDistance = true
	return b
}

func (b *FlagsBuilder) IgnoreCamera() *FlagsBuilder {
	b.flags.IgnoreCamera = true
	return b
}

func (b *FlagsBuilder) Targets(t Target) *FlagsBuilder {
	b.flags.Targets |= t
	return b
}

func (b *FlagsBuilder) Build() Flags {
	return b.flags
}
