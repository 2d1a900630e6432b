package fieldsim

import (
	"fmt"
	"math"
)

// Colour band for HumidityToColor.
const (
	colorBandLow  = 62.0
	colorBandHigh = 74.0
	colorAlphaMin = 0.08
	colorAlphaMax = 0.85
)

// HumidityToColor maps a value onto a fixed blue hue whose opacity rises
// linearly across [62, 74] and is flat outside it. NaN renders at the low end.
func HumidityToColor(v float64) string {
	return fmt.Sprintf("rgba(56, 132, 255, %.3f)", HumidityAlpha(v))
}

// HumidityAlpha returns the opacity HumidityToColor uses for v.
func HumidityAlpha(v float64) float64 {
	if math.IsNaN(v) {
		v = colorBandLow
	}
	t := Clamp((v-colorBandLow)/(colorBandHigh-colorBandLow), 0, 1)
	return Lerp(colorAlphaMin, colorAlphaMax, t)
}
