// Package theme resolves semantic colors to linear RGB values.
//
// The palettes are Solarized light and dark
// (https://ethanschoonover.com/solarized/), converted from sRGB to
// linear space so the values can feed the renderer directly.
package theme

// Color names one Solarized palette entry.
type Color uint8

const (
	Base03 Color = iota
	Base02
	Base01
	Base00
	Base0
	Base1
	Base2
	Base3
	Yellow
	Orange
	Red
	Magenta
	Violet
	Blue
	Cyan
	Green
)

// RGB returns the linear RGB triple for the palette entry.
func (c Color) RGB() [3]float32 {
	switch c {
	case Base03:
		return [3]float32{0.0030352699, 0.0241576303, 0.0368894450}
	case Base02:
		return [3]float32{0.0065120910, 0.0368894450, 0.0544802807}
	case Base01:
		return [3]float32{0.0975873619, 0.1559264660, 0.1778884083}
	case Base00:
		return [3]float32{0.1301364899, 0.1980693042, 0.2269658893}
	case Base0:
		return [3]float32{0.2269658893, 0.2961383164, 0.3049873710}
	case Base1:
		return [3]float32{0.2917706966, 0.3564002514, 0.3564002514}
	case Base2:
		return [3]float32{0.8549926877, 0.8069523573, 0.6653873324}
	case Base3:
		return [3]float32{0.9822505713, 0.9215820432, 0.7681512833}
	case Yellow:
		return [3]float32{0.4620770514, 0.2501583695, 0.0}
	case Orange:
		return [3]float32{0.5972018838, 0.0703601092, 0.0080231922}
	case Red:
		return [3]float32{0.7156936526, 0.0318960287, 0.0284260381}
	case Magenta:
		return [3]float32{0.6514056921, 0.0368894450, 0.2232279778}
	case Violet:
		return [3]float32{0.1499598026, 0.1651322246, 0.5520114899}
	case Blue:
		return [3]float32{0.0193823613, 0.2581829131, 0.6444797516}
	case Cyan:
		return [3]float32{0.0231533647, 0.3564002514, 0.3139887452}
	case Green:
		return [3]float32{0.2345506549, 0.3185468316, 0.0}
	}
	return [3]float32{1, 0, 1}
}

// Mode is a semantic palette: the same roles resolve to different
// Solarized entries in light and dark mode.
type Mode uint8

const (
	SolarizedDark Mode = iota
	SolarizedLight
)

// ByName maps a configuration string to a Mode; unknown names fall back
// to dark.
func ByName(name string) Mode {
	if name == "light" {
		return SolarizedLight
	}
	return SolarizedDark
}

func (m Mode) Text() Color {
	if m == SolarizedLight {
		return Base00
	}
	return Base0
}

func (m Mode) TextComment() Color {
	if m == SolarizedLight {
		return Base1
	}
	return Base01
}

func (m Mode) TextEmphasized() Color {
	if m == SolarizedLight {
		return Base01
	}
	return Base1
}

func (m Mode) Background() Color {
	if m == SolarizedLight {
		return Base3
	}
	return Base03
}

func (m Mode) BackgroundHighlight() Color {
	if m == SolarizedLight {
		return Base2
	}
	return Base02
}
