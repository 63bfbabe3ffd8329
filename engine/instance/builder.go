package instance

import (
	"github.com/google/uuid"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/motion"
)

// Char is one character of the layout snapshot supplied by the external
// text layout collaborator.
type Char struct {
	Char       rune
	Attributes Attributes
}

// Snapshot is the full per-frame layout state for one font.
type Snapshot struct {
	Font  uuid.UUID
	Chars []Char
}

// Group is all instances of one glyph, ready for instanced drawing.
type Group struct {
	Font      uuid.UUID
	Char      rune
	Instances []Raw
}

// Stream is the frame's complete instance upload, grouped per glyph in
// first-appearance order.
type Stream struct {
	Groups []Group
	total  int
}

// Total returns the instance count over all groups.
func (s *Stream) Total() int {
	return s.total
}

// StreamBuilder turns layout snapshots into GPU instance streams. The
// builder is reused across frames to keep its grouping scratch space;
// the streams it emits are fresh every frame.
type StreamBuilder struct {
	index map[rune]int
}

func NewStreamBuilder() *StreamBuilder {
	return &StreamBuilder{index: make(map[rune]int)}
}

// sanitize drops impossible motion: a moving instance with no duration
// can never progress, so it is downgraded to static.
func sanitize(a Attributes) Attributes {
	if a.Motion.HasMotion && a.Duration == 0 {
		core.LogWarn("instance motion with zero duration downgraded to static (char start_time=%d)", a.StartTime)
		a.Motion = motion.ZeroMotion
		a.Gain = 0
	}
	return a
}

// Build emits the instance stream for one snapshot. Instances are grouped
// by character so each distinct glyph mesh is drawn once with all of its
// instances.
func (b *StreamBuilder) Build(snap Snapshot) *Stream {
	clear(b.index)
	stream := &Stream{}
	for _, c := range snap.Chars {
		a := sanitize(c.Attributes)
		gi, ok := b.index[c.Char]
		if !ok {
			gi = len(stream.Groups)
			b.index[c.Char] = gi
			stream.Groups = append(stream.Groups, Group{Font: snap.Font, Char: c.Char})
		}
		g := &stream.Groups[gi]
		g.Instances = append(g.Instances, a.Raw())
		stream.total++
	}
	return stream
}
