// Package outline converts glyph outline contours into triangle meshes
// suitable for overlap-count rasterization.
//
// Contours arrive in em-square units from the font collaborator. Fill is
// determined later by parity of per-pixel overlap counts, never by signed
// winding direction, so contour orientation does not matter here.
package outline

import (
	"errors"

	"github.com/vecglyph/vecglyph/engine/math"
)

type SegmentKind uint8

const (
	SegmentLine SegmentKind = iota
	SegmentQuadraticBezier
)

// Segment is one piece of a contour. Control is meaningful only for
// quadratic beziers. Cubic segments must be pre-flattened to quadratics
// (see FlattenCubic) before they reach the tessellator.
type Segment struct {
	Kind    SegmentKind
	Start   math.Vec2
	Control math.Vec2
	End     math.Vec2
}

// Contour is an ordered, closed sequence of segments.
type Contour struct {
	Segments []Segment
}

var (
	ErrTooFewPoints      = errors.New("contour has fewer than 2 points")
	ErrZeroLengthSegment = errors.New("contour contains a zero-length segment")
)

// Validate reports whether the contour is usable for tessellation.
func (c *Contour) Validate() error {
	if len(c.Segments) < 2 {
		return ErrTooFewPoints
	}
	for _, s := range c.Segments {
		if s.Start == s.End {
			return ErrZeroLengthSegment
		}
	}
	return nil
}
