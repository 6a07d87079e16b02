package effects

import (
	"errors"
	"sort"
	"strings"

	"codeberg.org/altpic/altpic/pkg/img"
)

// ErrEmptyPalette is returned when a palette holds no color.
var ErrEmptyPalette = errors.New("palette is empty")

// Palette is an ordered list of colors.
type Palette []img.Color

// PaletteCustom is the palette name selecting user supplied colors.
const PaletteCustom = "custom"

var (
	paletteBW = Palette{{0, 0, 0}, {255, 255, 255}}

	// fallbackPalette is used when an empty palette reaches the quantizer.
	fallbackPalette = Palette{{0, 0, 0}}
)

var palettes = map[string]Palette{
	"bw": paletteBW,
	"cga": {
		{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
		{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
		{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
		{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
	},
	"gameboy": {
		{15, 56, 15}, {48, 98, 48}, {139, 172, 15}, {155, 188, 15},
	},
	"ega": egaPalette(),
	"nes": {
		{84, 84, 84}, {0, 30, 116}, {8, 16, 144}, {48, 0, 136}, {68, 0, 100}, {92, 0, 48}, {84, 4, 0}, {60, 24, 0},
		{32, 42, 0}, {8, 58, 0}, {0, 64, 0}, {0, 60, 0}, {0, 50, 60}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
		{152, 150, 152}, {8, 76, 196}, {48, 50, 236}, {92, 30, 228}, {136, 20, 176}, {160, 20, 100}, {152, 34, 32}, {120, 60, 0},
		{84, 90, 0}, {40, 114, 0}, {8, 124, 0}, {0, 118, 40}, {0, 102, 120}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
		{236, 238, 236}, {76, 154, 236}, {120, 124, 236}, {176, 98, 236}, {228, 84, 236}, {236, 88, 180}, {236, 106, 100}, {212, 136, 32},
		{160, 170, 0}, {116, 196, 0}, {76, 208, 32}, {56, 204, 108}, {56, 180, 204}, {60, 60, 60}, {0, 0, 0}, {0, 0, 0},
		{236, 238, 236}, {168, 204, 236}, {188, 188, 236}, {212, 178, 236}, {236, 174, 236}, {236, 174, 212}, {236, 180, 176}, {228, 196, 144},
		{204, 210, 120}, {180, 222, 120}, {168, 226, 144}, {152, 226, 180}, {160, 214, 228}, {160, 162, 160}, {0, 0, 0}, {0, 0, 0},
	},
	"pico8": {
		{0, 0, 0}, {29, 43, 83}, {126, 37, 83}, {0, 135, 81}, {171, 82, 54}, {95, 87, 79}, {194, 195, 199}, {255, 241, 232},
		{255, 0, 77}, {255, 163, 0}, {255, 236, 39}, {0, 228, 54}, {41, 173, 255}, {131, 118, 156}, {255, 119, 168}, {255, 204, 170},
	},
	// normal + bright, black only once
	"zxspec": {
		{0, 0, 0}, {0, 0, 215}, {215, 0, 0}, {215, 0, 215}, {0, 215, 0}, {0, 215, 215}, {215, 215, 0}, {215, 215, 215},
		{0, 0, 255}, {255, 0, 0}, {255, 0, 255}, {0, 255, 0}, {0, 255, 255}, {255, 255, 0}, {255, 255, 255},
	},
}

// egaPalette returns the 64 colors made of 4 levels per channel.
func egaPalette() Palette {
	levels := []uint8{0, 85, 170, 255}
	res := make(Palette, 0, 64)
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				res = append(res, img.Color{R: r, G: g, B: b})
			}
		}
	}
	return res
}

// PaletteNames returns the sorted list of preset names.
func PaletteNames() []string {
	res := make([]string, 0, len(palettes))
	for k := range palettes {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Preset returns a copy of a preset palette.
func Preset(name string) (Palette, bool) {
	p, ok := palettes[name]
	if !ok {
		return nil, false
	}
	return append(Palette(nil), p...), true
}

// ParseCustomPalette parses a comma separated list of "#rrggbb" colors.
// Malformed entries are skipped.
func ParseCustomPalette(s string) Palette {
	res := Palette{}
	if s == "" {
		return res
	}
	for _, token := range strings.Split(s, ",") {
		if c, ok := img.ParseHex(token); ok {
			res = append(res, c)
		}
	}
	return res
}

// GetPalette returns the palette for a given name.
//
// The "custom" name parses customColors and falls back to black and
// white when nothing valid remains. Unknown names use the black and
// white preset. A preset with more than numColors entries is reduced
// by picking numColors entries at regular intervals.
func GetPalette(name string, numColors int, customColors string) Palette {
	if name == PaletteCustom {
		if p := ParseCustomPalette(customColors); len(p) > 0 {
			return p
		}
		return append(Palette(nil), paletteBW...)
	}

	full, ok := palettes[name]
	if !ok {
		full = paletteBW
	}
	if numColors < 1 {
		numColors = 1
	}
	if len(full) <= numColors {
		return append(Palette(nil), full...)
	}

	res := make(Palette, numColors)
	for i := range res {
		res[i] = full[i*len(full)/numColors]
	}
	return res
}

// Validate returns ErrEmptyPalette when the palette has no color.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPalette
	}
	return nil
}

// Contains returns true when c is one of the palette's colors.
func (p Palette) Contains(c img.Color) bool {
	for _, x := range p {
		if x == c {
			return true
		}
	}
	return false
}

// Nearest returns the palette color with the smallest squared RGB
// distance to (r, g, b). On ties, the first color wins.
// It must not be called on an empty palette.
func (p Palette) Nearest(r, g, b float64) img.Color {
	best := p[0]
	minDist := -1.0
	for _, c := range p {
		dr := r - float64(c.R)
		dg := g - float64(c.G)
		db := b - float64(c.B)
		dist := dr*dr + dg*dg + db*db
		if minDist < 0 || dist < minDist {
			minDist = dist
			best = c
		}
	}
	return best
}

// orFallback returns the palette, or a single black entry when empty.
func (p Palette) orFallback() Palette {
	if len(p) == 0 {
		return fallbackPalette
	}
	return p
}
