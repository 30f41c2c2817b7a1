package grid

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is an opaque RGB color. It marshals as "#rrggbb" in YAML and JSON.
type Color struct {
	R, G, B uint8
}

// RGB is a shorthand constructor.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Scale returns c with every channel multiplied by f (clamped to [0,255]).
// Event borders are drawn with Scale(0.8) of the fill.
func (c Color) Scale(f float64) Color {
	return Color{R: scaleChannel(c.R, f), G: scaleChannel(c.G, f), B: scaleChannel(c.B, f)}
}

func scaleChannel(v uint8, f float64) uint8 {
	x := float64(v) * f
	switch {
	case x < 0:
		return 0
	case x > 255:
		return 255
	}
	return uint8(x + 0.5)
}

// Luma is the perceptual brightness (0–255).
func (c Color) Luma() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Distance is the largest per-channel difference between c and o.
func (c Color) Distance(o Color) int {
	d := absDiff(c.R, o.R)
	if g := absDiff(c.G, o.G); g > d {
		d = g
	}
	if b := absDiff(c.B, o.B); b > d {
		d = b
	}
	return d
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// NRGBA converts c for use with the image packages.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts "#rrggbb", "rrggbb" and "#rgb".
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("grid: invalid color %q", s)
	}
	var c Color
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("grid: invalid color %q: %w", s, err)
	}
	return c, nil
}
