package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB color with float components (0.0 to 1.0).
type Color struct {
	R, G, B float32
}

// Predefined colors.
var (
	ColorWhite = Color{1, 1, 1}
	ColorBlack = Color{0, 0, 0}
)

// ParseColor parses a "#rrggbb" or "#rgb" string.
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return FromColorful(c), nil
}

// FromColorful converts a go-colorful color, clamping to the valid range.
func FromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// Scaled multiplies every component by s.
func (c Color) Scaled(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Array returns the color as a vec3 for shader uniforms.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}
