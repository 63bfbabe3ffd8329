package engine

import (
	"github.com/vecglyph/vecglyph/engine/instance"
)

// Game is the application the engine drives. The engine owns the
// window, the render path and the camera; the game owns the text being
// animated and hands the engine one layout snapshot per frame.
type Game struct {
	// ConfigPath points at the TOML configuration; empty means defaults
	// only.
	ConfigPath string
	State      interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnSnapshot   Snapshot
	FnOnResize   OnResize
}

type Initialize func(e *Engine) error
type Update func(now uint32) error
type Snapshot func(now uint32) instance.Snapshot
type OnResize func(width uint32, height uint32) error
