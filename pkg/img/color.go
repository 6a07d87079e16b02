package img

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Luminance returns the weighted grayscale value of an RGB triple,
// in the same 0-255 range as its inputs.
func Luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Luminance returns the color's luminance (0-255).
func (c Color) Luminance() float64 {
	return Luminance(float64(c.R), float64(c.G), float64(c.B))
}

// RGBA implements color.Color. The color is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex returns the color as a "#rrggbb" string.
func (c Color) Hex() string {
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[c.R>>4], digits[c.R&15],
		digits[c.G>>4], digits[c.G&15],
		digits[c.B>>4], digits[c.B&15],
	})
}

// ParseHex parses a "#rrggbb" color. It returns false when the
// string is not exactly a hash followed by six hexadecimal digits.
func ParseHex(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return Color{}, false
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	v, ok := ParseHex(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", text)
	}
	*c = v
	return nil
}

// HexOr parses a "#rrggbb" color and returns def when it's not valid.
func HexOr(s string, def Color) Color {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return def
}

// Clamp limits v to [0, 255].
func Clamp(v float64) float64 {
	return ClampRange(v, 0, 255)
}

// ClampRange limits v to [lo, hi].
func ClampRange(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToUint8 rounds and clamps v to a channel value.
func ToUint8(v float64) uint8 {
	return uint8(math.Round(Clamp(v)))
}

// RGBToHSL converts RGB (0-255) to HSL with h in [0, 360) and
// s, l in [0, 100]. The hue is 0 for achromatic colors.
func RGBToHSL(r, g, b float64) (h, s, l float64) {
	r /= 255
	g /= 255
	b /= 255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l * 100
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}

	return h / 6 * 360, s * 100, l * 100
}

// HSLToRGB converts HSL (h in degrees, s and l in [0, 100]) back to
// RGB channel values rounded to the nearest integer.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	h /= 360
	s /= 100
	l /= 100

	if s == 0 {
		v := math.Round(l * 255)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = math.Round(hueToRGB(p, q, h+1.0/3) * 255)
	g = math.Round(hueToRGB(p, q, h) * 255)
	b = math.Round(hueToRGB(p, q, h-1.0/3) * 255)
	return
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
