package vector

import (
	"fmt"
	"math"
)

// ColourFilter decides which stroke colours carry meaning. Brightness is
// the mean of the components on a 0..255 scale; saturation is
// (max-min)/max.
type ColourFilter struct {
	MinBrightness float64
	MaxBrightness float64
	MinSaturation float64
}

// DefaultColourFilter rejects black, grey and near-white strokes.
func DefaultColourFilter() ColourFilter {
	return ColourFilter{
		MinBrightness: 20,
		MaxBrightness: 240,
		MinSaturation: 0.15,
	}
}

// Accepts reports whether the colour is strictly inside the brightness band
// and more saturated than MinSaturation.
func (f ColourFilter) Accepts(r, g, b float64) bool {
	brightness := Brightness(r, g, b)
	return brightness > f.MinBrightness &&
		brightness < f.MaxBrightness &&
		Saturation(r, g, b) > f.MinSaturation
}

// Brightness returns the mean component value scaled to 0..255.
func Brightness(r, g, b float64) float64 {
	return (r + g + b) / 3 * 255
}

// Saturation returns (max-min)/max, or 0 for black.
func Saturation(r, g, b float64) float64 {
	hi := max(r, g, b)
	lo := min(r, g, b)
	if hi <= 0 {
		return 0
	}
	return (hi - lo) / hi
}

// Hex formats a 0..1 RGB colour as "#rrggbb".
func Hex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// GrayToRGB converts a DeviceGray level.
func GrayToRGB(level float64) (r, g, b float64) {
	return level, level, level
}

// CMYKToRGB converts a DeviceCMYK colour using the naive complement
// formula.
func CMYKToRGB(c, m, y, k float64) (r, g, b float64) {
	return (1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)
}
