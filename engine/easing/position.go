package easing

// Position maps wall-clock ticks to normalized animation time.
//
// The mapping is pure: identical inputs always yield identical output, so
// a dropped frame never corrupts later frames; the next frame simply
// recomputes the correct value for its own timestamp. Tick subtraction is
// done in uint32 space, which stays correct across the tick counter wrap.
//
//   - turnBack: t ping-pongs over the duration (out and back within one
//     period), returning to 0 when the period ends.
//   - isLoop: t wraps modulo the duration, direction flipping every other
//     period.
//   - neither: t climbs monotonically and clamps at 1.
func Position(now, startTime uint32, duration uint32, turnBack, isLoop bool) float32 {
	if duration == 0 {
		return 1
	}
	elapsed := now - startTime

	if isLoop {
		cycle := elapsed / duration
		frac := float32(elapsed%duration) / float32(duration)
		if turnBack {
			return pingPong(frac)
		}
		if cycle%2 == 1 {
			frac = 1 - frac
		}
		return frac
	}

	if turnBack {
		if elapsed >= duration {
			return 0
		}
		return pingPong(float32(elapsed) / float32(duration))
	}

	if elapsed >= duration {
		return 1
	}
	return float32(elapsed) / float32(duration)
}

func pingPong(frac float32) float32 {
	if frac <= 0.5 {
		return 2 * frac
	}
	return 2 * (1 - frac)
}
