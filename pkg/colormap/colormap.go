// Package colormap provides layer tint palettes and hex color helpers.
package colormap

import (
	"fmt"
	"image/color"
)

// layerPalette is the default tint cycle for multi-channel overlays. White
// first so a lone EM layer stays grayscale, then high-contrast channel
// colors.
var layerPalette = []string{
	"#ffffff",
	"#00ff00",
	"#ff00ff",
	"#00ffff",
	"#ffff00",
	"#ff8040",
	"#8040ff",
	"#40a0ff",
}

// LayerTint returns the default tint for the i-th layer (wraps around).
func LayerTint(i int) string {
	if i < 0 {
		i = -i
	}
	return layerPalette[i%len(layerPalette)]
}

// PaletteSize returns the number of distinct tints before wrapping.
func PaletteSize() int {
	return len(layerPalette)
}

// ParseHex parses a "#rrggbb" color string.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatHex renders a color as "#rrggbb", discarding alpha.
func FormatHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Accent maps normalized values [0, 1] onto a gradient; used for generated
// thumbnail accents.
type Accent struct {
	colors []color.RGBA
}

// At returns the gradient color at position t (0-1).
func (a Accent) At(t float64) color.Color {
	if t <= 0 {
		return a.colors[0]
	}
	if t >= 1 {
		return a.colors[len(a.colors)-1]
	}

	idx := t * float64(len(a.colors)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(a.colors) {
		upper = len(a.colors) - 1
	}

	frac := idx - float64(lower)
	return interpolate(a.colors[lower], a.colors[upper], frac)
}

func interpolate(c1, c2 color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c1.R) + t*(float64(c2.R)-float64(c1.R))),
		G: uint8(float64(c1.G) + t*(float64(c2.G)-float64(c1.G))),
		B: uint8(float64(c1.B) + t*(float64(c2.B)-float64(c1.B))),
		A: 255,
	}
}

// Viridis accent gradient (matplotlib viridis).
var Viridis = Accent{
	colors: []color.RGBA{
		{68, 1, 84, 255},
		{72, 35, 116, 255},
		{64, 67, 135, 255},
		{52, 94, 141, 255},
		{41, 120, 142, 255},
		{32, 144, 140, 255},
		{34, 167, 132, 255},
		{68, 190, 112, 255},
		{121, 209, 81, 255},
		{189, 222, 38, 255},
		{253, 231, 37, 255},
	},
}
