package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vecglyph/vecglyph/engine/fontsource"
	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/renderer"
	"github.com/vecglyph/vecglyph/engine/renderer/soft"
	"github.com/vecglyph/vecglyph/engine/theme"
)

// The renderer is a process-wide singleton, so one test drives the whole
// frame lifecycle end to end.
func TestRendererFrameLifecycle(t *testing.T) {
	fonts := fontsource.NewRegistry()
	src, err := fonts.Register(goregular.TTF)
	require.NoError(t, err)

	backend := soft.New(0)
	require.NoError(t, renderer.Initialize(backend, fonts, theme.SolarizedDark, 64, 128, 128))
	defer renderer.Shutdown()

	attrs := instance.DefaultAttributes()
	attrs.InstanceScale = [2]float32{0.8, 0.8}
	attrs.Color = theme.SolarizedDark.Text().RGB()
	snapshot := instance.Snapshot{
		Font:  src.ID(),
		Chars: []instance.Char{{Char: 'H', Attributes: attrs}},
	}

	require.NoError(t, renderer.DrawFrame(snapshot, math.NewMat4Identity(), 0))

	// the glyph must have produced visible pixels distinct from the
	// background
	img := backend.Image()
	bg := img.RGBAAt(2, 2)
	lit := 0
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			px := img.RGBAAt(x, y)
			if px != bg {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 100, "glyph should cover a visible area")

	// resize keeps the session renderable
	require.NoError(t, renderer.OnResize(64, 64))
	require.NoError(t, renderer.DrawFrame(snapshot, math.NewMat4Identity(), 16))

	// unknown glyphs degrade to empty meshes, not errors
	snapshot.Chars = append(snapshot.Chars, instance.Char{Char: '\U000E0041', Attributes: attrs})
	require.NoError(t, renderer.DrawFrame(snapshot, math.NewMat4Identity(), 32))
}
