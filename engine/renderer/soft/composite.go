package soft

import (
	"image"
	"image/color"
	stdmath "math"

	"github.com/vecglyph/vecglyph/engine/math"
)

func pow(x, y float32) float32 {
	return float32(stdmath.Pow(float64(x), float64(y)))
}

// srgbEncode converts one linear channel to its 8-bit sRGB value.
func srgbEncode(l float32) uint8 {
	l = math.Clamp(l, 0, 1)
	var s float32
	if l <= 0.0031308 {
		s = 12.92 * l
	} else {
		s = 1.055*pow(l, 1.0/2.4) - 0.055
	}
	return uint8(math.Clamp(s*255+0.5, 0, 255))
}

// Composite blends the resolved glyph layer over the background color
// into an sRGB image.
func Composite(layer *Layer, background [3]float32, img *image.RGBA) {
	for y := 0; y < layer.Height(); y++ {
		for x := 0; x < layer.Width(); x++ {
			i := y*layer.Width() + x
			a := math.Clamp(layer.Alpha[i], 0, 1)
			c := layer.Color[i]
			img.SetRGBA(x, y, color.RGBA{
				R: srgbEncode(background[0]*(1-a) + c[0]*a),
				G: srgbEncode(background[1]*(1-a) + c[1]*a),
				B: srgbEncode(background[2]*(1-a) + c[2]*a),
				A: 255,
			})
		}
	}
}
