package core

import (
	"sync"
	"time"
)

// Tick is a millisecond counted from process start. It wraps around after
// the uint32 range is exhausted (roughly 49 days); animation state is a pure
// function of the current tick, so the wrap produces one visual glitch and
// nothing else.
type Tick = uint32

var startOnce sync.Once
var processStart time.Time

// Ticks returns the milliseconds elapsed since the first call.
func Ticks() Tick {
	startOnce.Do(func() { processStart = time.Now() })
	return Tick(time.Since(processStart).Milliseconds() % (1 << 32))
}

type Clock struct {
	startTime float64
	elapsed   float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.startTime != 0 {
		c.elapsed = float64(time.Now().UnixNano())/1e9 - c.startTime
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = float64(time.Now().UnixNano()) / 1e9
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = 0
}

// Elapsed returns elapsed seconds as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
