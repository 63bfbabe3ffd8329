package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSafeBeforeInitialize(t *testing.T) {
	// runs first in this file, before any test has initialized the
	// singleton
	assert.NotPanics(t, func() { MetricsUpdate(0.016) })
	fps, avgMS := MetricsFrame()
	assert.Zero(t, fps)
	assert.Zero(t, avgMS)
}

func TestMetricsFrameAveragesWindow(t *testing.T) {
	assert.NoError(t, MetricsInitialize())
	for i := 0; i < 101; i++ {
		MetricsUpdate(0.010)
	}
	fps, avgMS := MetricsFrame()
	assert.InDelta(t, 10.0, avgMS, 1e-9)
	assert.Equal(t, 101.0, fps)
}
