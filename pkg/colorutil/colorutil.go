// Package colorutil provides shared color utilities for wire strokes.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Neutral is the fallback color used when a run mixes differently colored wires.
const Neutral = "#808080"

// Parse resolves a stroke color written as "#rgb", "#rrggbb", "#rrggbbaa"
// or an SVG color name. It returns false for anything else.
func Parse(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	if len(hex) == 6 {
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// Hex formats c as lowercase "#rrggbb", appending alpha only when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Normalize returns a canonical spelling of a stroke color so that "red",
// "#F00" and "#ff0000" compare equal. Unparseable input is lowercased and
// trimmed but otherwise kept.
func Normalize(s string) string {
	if c, ok := Parse(s); ok {
		return Hex(c)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Equal reports whether two stroke colors denote the same color.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
