package theme

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func toSRGB(l float32) uint32 {
	f := float64(l)
	var s float64
	if f <= 0.0031308 {
		s = 12.92 * f
	} else {
		s = 1.055*stdmath.Pow(f, 1.0/2.4) - 0.055
	}
	return uint32(stdmath.Round(s * 255))
}

// published Solarized sRGB values, https://ethanschoonover.com/solarized/
var schemes = []struct {
	color   Color
	r, g, b uint32
}{
	{Base03, 0, 43, 54},
	{Base02, 7, 54, 66},
	{Base01, 88, 110, 117},
	{Base00, 101, 123, 131},
	{Base0, 131, 148, 150},
	{Base1, 147, 161, 161},
	{Base2, 238, 232, 213},
	{Base3, 253, 246, 227},
	{Yellow, 181, 137, 0},
	{Orange, 203, 75, 22},
	{Red, 220, 50, 47},
	{Magenta, 211, 54, 130},
	{Violet, 108, 113, 196},
	{Blue, 38, 139, 210},
	{Cyan, 42, 161, 152},
	{Green, 133, 153, 0},
}

func TestPaletteMatchesSolarized(t *testing.T) {
	for _, s := range schemes {
		rgb := s.color.RGB()
		assert.InDelta(t, s.r, toSRGB(rgb[0]), 10)
		assert.InDelta(t, s.g, toSRGB(rgb[1]), 10)
		assert.InDelta(t, s.b, toSRGB(rgb[2]), 10)
	}
}

func TestModeRoles(t *testing.T) {
	assert.Equal(t, Base0, SolarizedDark.Text())
	assert.Equal(t, Base03, SolarizedDark.Background())
	assert.Equal(t, Base00, SolarizedLight.Text())
	assert.Equal(t, Base3, SolarizedLight.Background())
	// emphasis and comment swap between modes
	assert.Equal(t, SolarizedDark.TextEmphasized(), SolarizedLight.TextComment())
	assert.Equal(t, SolarizedDark.TextComment(), SolarizedLight.TextEmphasized())
}

func TestByName(t *testing.T) {
	assert.Equal(t, SolarizedLight, ByName("light"))
	assert.Equal(t, SolarizedDark, ByName("dark"))
	assert.Equal(t, SolarizedDark, ByName("anything-else"))
}
