// Package raster provides the pixel-level primitives of the badge renderer:
// shape masks, linear gradients, compositing through a mask, outline strokes
// and color parsing.
//
// All buffers are straight 8-bit RGBA. Compositing is Porter-Duff "over".
// Masks and strokes are built from the outline helpers in the geometry package
// so that a shape's fill and its border always trace the same path.
package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Transparent is fully transparent white, the pixel value of an empty canvas.
var Transparent = color.NRGBA{R: 255, G: 255, B: 255, A: 0}

// ParseColor parses a CSS-style color string.
//
// Accepted forms: "#rgb", "#rrggbb", "#rrggbbaa", SVG color names
// (case-insensitive) and "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if v == "transparent" {
		return Transparent, nil
	}
	if !strings.HasPrefix(v, "#") {
		c, ok := colornames.Map[v]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}

	switch len(v) {
	case 4, 7:
		c, err := colorful.Hex(v)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case 9:
		n, err := strconv.ParseUint(v[1:], 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}

// MustParseColor is like ParseColor but panics on error.
// It is intended for package-level defaults.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FormatColor renders c as "#rrggbb", or "#rrggbbaa" when it is not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Blend interpolates from a to b by t in [0,1]. RGB is blended with
// go-colorful in sRGB space; alpha is interpolated linearly.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + t*(float64(b.A)-float64(a.A))
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(alpha + 0.5)}
}
