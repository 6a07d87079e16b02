package ascii

import (
	"github.com/thoas/go-funk"

	"codeberg.org/altpic/altpic/pkg/img"
)

// Color modes.
const (
	ColorModeMono  = "mono"
	ColorModeColor = "color"
)

// CharsetCustom selects the user supplied characters.
const CharsetCustom = "custom"

// Params holds the ASCII generator settings.
type Params struct {
	Enabled        bool    `toml:"enabled" schema:"enabled" json:"enabled"`
	Charset        string  `toml:"charset" schema:"charset" json:"charset"`
	CustomChars    string  `toml:"custom_chars" schema:"customChars" json:"customChars"`
	CellSize       int     `toml:"cell_size" schema:"cellSize" json:"cellSize"`
	ColorMode      string  `toml:"color_mode" schema:"colorMode" json:"colorMode"`
	Color          string  `toml:"color" schema:"color" json:"color"`
	Background     string  `toml:"background" schema:"bg" json:"bg"`
	Edges          bool    `toml:"edges" schema:"edges" json:"edges"`
	Overlay        bool    `toml:"overlay" schema:"overlay" json:"overlay"`
	OverlayOpacity float64 `toml:"overlay_opacity" schema:"overlayOpacity" json:"overlayOpacity"`
}

// DefaultParams returns the default ASCII settings.
func DefaultParams() Params {
	return Params{
		Enabled:        false,
		Charset:        "simple",
		CustomChars:    Charsets["simple"],
		CellSize:       8,
		ColorMode:      ColorModeMono,
		Color:          "#00ff00",
		Background:     "#000000",
		Edges:          false,
		Overlay:        false,
		OverlayOpacity: 80,
	}
}

// Normalize clamps numeric values and resets unknown choices to
// their default.
func (p *Params) Normalize() {
	def := DefaultParams()

	if p.Charset != CharsetCustom {
		if _, ok := Charsets[p.Charset]; !ok {
			p.Charset = def.Charset
		}
	}
	if p.CellSize < 1 {
		p.CellSize = 1
	}
	if !funk.ContainsString([]string{ColorModeMono, ColorModeColor}, p.ColorMode) {
		p.ColorMode = def.ColorMode
	}
	if _, ok := img.ParseHex(p.Color); !ok {
		p.Color = def.Color
	}
	if _, ok := img.ParseHex(p.Background); !ok {
		p.Background = def.Background
	}
	p.OverlayOpacity = img.ClampRange(p.OverlayOpacity, 0, 100)
}

// Chars returns the active character set.
func (p Params) Chars() []rune {
	if p.Charset == CharsetCustom {
		return []rune(p.CustomChars)
	}
	if s, ok := Charsets[p.Charset]; ok {
		return []rune(s)
	}
	return []rune(Charsets["simple"])
}
