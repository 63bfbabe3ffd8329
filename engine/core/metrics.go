package core

import "sync"

// frames averaged per window
const metricsWindow = 30

type metrics struct {
	samples  [metricsWindow]float64
	cursor   int
	frameAvg float64

	frames     int32
	accumMS    float64
	fps        float64
	reportFreq float64
}

var onceMetrics sync.Once
var metricsState *metrics

// MetricsInitialize prepares frame timing collection. Safe to call more
// than once.
func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &metrics{reportFreq: 5000}
	})
	return nil
}

// MetricsUpdate records one frame of elapsedSeconds. The frame time
// average is recomputed once per window, the FPS once per second, and a
// summary is logged every few seconds at debug level.
func MetricsUpdate(elapsedSeconds float64) {
	m := metricsState
	if m == nil {
		return
	}
	ms := elapsedSeconds * 1000.0

	m.samples[m.cursor] = ms
	m.cursor++
	if m.cursor == metricsWindow {
		m.cursor = 0
		sum := 0.0
		for _, s := range m.samples {
			sum += s
		}
		m.frameAvg = sum / metricsWindow
	}

	m.frames++
	m.accumMS += ms
	if m.accumMS > 1000 {
		m.fps = float64(m.frames)
		m.accumMS -= 1000
		m.frames = 0

		m.reportFreq -= 1000
		if m.reportFreq <= 0 {
			m.reportFreq = 5000
			LogDebug("frame: %.2f fps, %.3f ms avg", m.fps, m.frameAvg)
		}
	}
}

// MetricsFrame returns the last measured frames per second and the
// windowed average frame time in milliseconds.
func MetricsFrame() (fps float64, avgMS float64) {
	if metricsState == nil {
		return 0, 0
	}
	return metricsState.fps, metricsState.frameAvg
}
