package testbed

import (
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vecglyph/vecglyph/engine"
	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/easing"
	"github.com/vecglyph/vecglyph/engine/fontsource"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/motion"
)

// gameState is the demo scene: two lines of animated text whose layout
// is fixed and whose motion plays on the clock.
type gameState struct {
	font  *fontsource.Source
	chars []instance.Char
}

// NewGame builds the demo application around configPath.
func NewGame(configPath string) *engine.Game {
	state := &gameState{}
	g := &engine.Game{
		ConfigPath: configPath,
		State:      state,
	}
	g.FnInitialize = state.initialize
	g.FnSnapshot = state.snapshot
	return g
}

func (s *gameState) initialize(e *engine.Engine) error {
	src, err := e.Fonts().Register(goregular.TTF)
	if err != nil {
		return err
	}
	s.font = src
	s.chars = buildScene(src)
	core.LogInfo("testbed scene ready: %d characters", len(s.chars))
	return nil
}

func (s *gameState) snapshot(now uint32) instance.Snapshot {
	return instance.Snapshot{
		Font:  s.font.ID(),
		Chars: s.chars,
	}
}

// BuildScene exposes the demo layout for offline recording.
func BuildScene(src *fontsource.Source) []instance.Char {
	return buildScene(src)
}

// buildScene lays out the demo text. Glyph space is unit height, so the
// world scale sets the visual size directly.
func buildScene(src *fontsource.Source) []instance.Char {
	var chars []instance.Char

	// Title: every character bounces on its own phase.
	bounce := motion.Builder().
		EaseOut(easing.Bounce).
		Loop().TurnBack().
		Targets(motion.MoveYPlus).
		Build()
	chars = append(chars, line(src, "vecglyph", lineOptions{
		y:         -1.6,
		scale:     3.0,
		color:     [3]float32{0.92, 0.86, 0.70},
		motion:    bounce,
		gain:      0.6,
		duration:  900,
		staggerMs: 90,
	})...)

	// Subtitle: a gentle synchronized sway.
	sway := motion.Builder().
		EaseInOut(easing.Sine).
		Loop().TurnBack().
		Targets(motion.RotateZPlus).
		Build()
	chars = append(chars, line(src, "animated vector text", lineOptions{
		y:        1.2,
		scale:    1.2,
		color:    [3]float32{0.55, 0.64, 0.68},
		motion:   sway,
		gain:     0.25,
		duration: 2400,
	})...)

	return chars
}

type lineOptions struct {
	y         float32
	scale     float32
	color     [3]float32
	motion    motion.Flags
	gain      float32
	duration  uint32
	staggerMs uint32
}

// line lays out one horizontally centered string.
func line(src *fontsource.Source, text string, opt lineOptions) []instance.Char {
	runes := []rune(text)
	advances := make([]float32, len(runes))

	var width float32
	for i, r := range runes {
		if r == ' ' {
			advances[i] = 0.3
		} else if adv, err := src.Advance(r); err == nil {
			advances[i] = adv
		} else {
			advances[i] = 0.3
		}
		width += advances[i] * opt.scale
	}

	chars := make([]instance.Char, 0, len(runes))
	pen := -width / 2
	for i, r := range runes {
		step := advances[i] * opt.scale
		if r != ' ' {
			a := instance.DefaultAttributes()
			a.Position = math.NewVec3(pen+step/2, opt.y, 0)
			a.WorldScale = [2]float32{opt.scale, opt.scale}
			a.Color = opt.color
			a.Motion = opt.motion
			a.StartTime = uint32(i) * opt.staggerMs
			a.Gain = opt.gain
			a.Duration = opt.duration
			chars = append(chars, instance.Char{Char: r, Attributes: a})
		}
		pen += step
	}
	return chars
}
