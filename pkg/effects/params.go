package effects

import (
	"io"
	"math"

	"github.com/pelletier/go-toml"
	"github.com/thoas/go-funk"

	"codeberg.org/altpic/altpic/pkg/ascii"
	"codeberg.org/altpic/altpic/pkg/img"
)

// ToneParams holds the color adjustments.
type ToneParams struct {
	Brightness float64 `toml:"brightness" schema:"brightness" json:"brightness"`
	Contrast   float64 `toml:"contrast" schema:"contrast" json:"contrast"`
	Saturation float64 `toml:"saturation" schema:"saturation" json:"saturation"`
	Hue        float64 `toml:"hue" schema:"hue" json:"hue"`
	Posterize  int     `toml:"posterize" schema:"posterize" json:"posterize"`
	Sepia      float64 `toml:"sepia" schema:"sepia" json:"sepia"`
	Invert     float64 `toml:"invert" schema:"invert" json:"invert"`
	Duotone    float64 `toml:"duotone" schema:"duotone" json:"duotone"`
	DuotoneA   string  `toml:"duotone_color_a" schema:"duotoneColorA" json:"duotoneColorA"`
	DuotoneB   string  `toml:"duotone_color_b" schema:"duotoneColorB" json:"duotoneColorB"`
}

// DitherParams holds the quantization settings.
type DitherParams struct {
	Algorithm    Algorithm `toml:"algorithm" schema:"algo" json:"algo"`
	Colors       int       `toml:"colors" schema:"colors" json:"colors"`
	Strength     float64   `toml:"strength" schema:"strength" json:"strength"`
	Palette      string    `toml:"palette" schema:"palette" json:"palette"`
	BayerSize    int       `toml:"bayer_size" schema:"bayerSize" json:"bayerSize"`
	Serpentine   bool      `toml:"serpentine" schema:"serpentine" json:"serpentine"`
	CustomColors string    `toml:"custom_colors" schema:"customColors" json:"customColors"`
	BlockSize    int       `toml:"block_size" schema:"blockSize" json:"blockSize"`
}

// StylizeParams holds the pixelate, scanlines, halftone and glitch settings.
type StylizeParams struct {
	Pixelate      int     `toml:"pixelate" schema:"pixelate" json:"pixelate"`
	Scanlines     float64 `toml:"scanlines" schema:"scanlines" json:"scanlines"`
	ScanlineWidth int     `toml:"scanline_width" schema:"scanlineWidth" json:"scanlineWidth"`
	Halftone      float64 `toml:"halftone" schema:"halftone" json:"halftone"`
	HalftoneSize  int     `toml:"halftone_size" schema:"halftoneSize" json:"halftoneSize"`
	Glitch        float64 `toml:"glitch" schema:"glitch" json:"glitch"`
}

// DotMatrixParams holds the dot-matrix settings.
type DotMatrixParams struct {
	Intensity  float64 `toml:"intensity" schema:"intensity" json:"intensity"`
	Size       int     `toml:"size" schema:"size" json:"size"`
	Shape      string  `toml:"shape" schema:"shape" json:"shape"`
	Background string  `toml:"background" schema:"bg" json:"bg"`
	Layout     string  `toml:"layout" schema:"layout" json:"layout"`
	ColorMode  string  `toml:"color_mode" schema:"colorMode" json:"colorMode"`
	Color      string  `toml:"color" schema:"color" json:"color"`
	Invert     bool    `toml:"invert" schema:"invert" json:"invert"`
	Soft       bool    `toml:"soft" schema:"soft" json:"soft"`
	Gamma      float64 `toml:"gamma" schema:"gamma" json:"gamma"`
}

// Params is a full render configuration snapshot.
type Params struct {
	Tone      ToneParams      `toml:"tone" schema:"tone" json:"tone"`
	Dither    DitherParams    `toml:"dither" schema:"dither" json:"dither"`
	Stylize   StylizeParams   `toml:"stylize" schema:"stylize" json:"stylize"`
	DotMatrix DotMatrixParams `toml:"dot_matrix" schema:"dotMatrix" json:"dotMatrix"`
	ASCII     ascii.Params    `toml:"ascii" schema:"ascii" json:"ascii"`
}

// Dot-matrix choices.
const (
	ShapeCircle  = "circle"
	ShapeSquare  = "square"
	ShapeDiamond = "diamond"
	ShapeRing    = "ring"
	ShapeCross   = "cross"

	LayoutGrid  = "grid"
	LayoutBrick = "brick"

	DotColorOriginal = "original"
	DotColorMono     = "mono"
	DotColorInvert   = "invert"
)

var (
	dotShapes     = []string{ShapeCircle, ShapeSquare, ShapeDiamond, ShapeRing, ShapeCross}
	dotLayouts    = []string{LayoutGrid, LayoutBrick}
	dotColorModes = []string{DotColorOriginal, DotColorMono, DotColorInvert}
)

// DefaultParams returns a snapshot where every effect is disabled.
func DefaultParams() Params {
	return Params{
		Tone: ToneParams{
			Posterize: 32,
			DuotoneA:  "#000000",
			DuotoneB:  "#ffffff",
		},
		Dither: DitherParams{
			Algorithm:    AlgoNone,
			Colors:       2,
			Strength:     100,
			Palette:      "bw",
			BayerSize:    4,
			CustomColors: "#000000,#ffffff",
			BlockSize:    1,
		},
		Stylize: StylizeParams{
			Pixelate:      1,
			ScanlineWidth: 2,
			HalftoneSize:  4,
		},
		DotMatrix: DotMatrixParams{
			Size:       8,
			Shape:      ShapeCircle,
			Background: "#000000",
			Layout:     LayoutGrid,
			ColorMode:  DotColorOriginal,
			Color:      "#ffffff",
			Gamma:      1.0,
		},
		ASCII: ascii.DefaultParams(),
	}
}

// Normalize clamps every numeric value to its range and resets
// unknown choices to their default. The dither algorithm is left as
// is: an unknown name simply disables dithering.
func (p *Params) Normalize() {
	def := DefaultParams()

	t := &p.Tone
	t.Brightness = img.ClampRange(t.Brightness, -100, 100)
	t.Contrast = img.ClampRange(t.Contrast, -100, 100)
	t.Saturation = img.ClampRange(t.Saturation, -100, 100)
	t.Hue = wrapHue(t.Hue)
	t.Posterize = clampInt(t.Posterize, 2, 32)
	t.Sepia = img.ClampRange(t.Sepia, 0, 100)
	t.Invert = img.ClampRange(t.Invert, 0, 100)
	t.Duotone = img.ClampRange(t.Duotone, 0, 100)
	t.DuotoneA = validHex(t.DuotoneA, def.Tone.DuotoneA)
	t.DuotoneB = validHex(t.DuotoneB, def.Tone.DuotoneB)

	d := &p.Dither
	d.Colors = clampInt(d.Colors, 1, 256)
	d.Strength = img.ClampRange(d.Strength, 0, 100)
	if d.Palette != PaletteCustom {
		if _, ok := palettes[d.Palette]; !ok {
			d.Palette = def.Dither.Palette
		}
	}
	if d.BayerSize != 8 && d.BayerSize != 16 {
		d.BayerSize = 4
	}
	if d.BlockSize < 1 {
		d.BlockSize = 1
	}

	s := &p.Stylize
	if s.Pixelate < 1 {
		s.Pixelate = 1
	}
	s.Scanlines = img.ClampRange(s.Scanlines, 0, 100)
	if s.ScanlineWidth < 1 {
		s.ScanlineWidth = 1
	}
	s.Halftone = img.ClampRange(s.Halftone, 0, 100)
	if s.HalftoneSize < 1 {
		s.HalftoneSize = 1
	}
	s.Glitch = img.ClampRange(s.Glitch, 0, 100)

	m := &p.DotMatrix
	m.Intensity = img.ClampRange(m.Intensity, 0, 100)
	if m.Size < 2 {
		m.Size = 2
	}
	if !funk.ContainsString(dotShapes, m.Shape) {
		m.Shape = def.DotMatrix.Shape
	}
	if !funk.ContainsString(dotLayouts, m.Layout) {
		m.Layout = def.DotMatrix.Layout
	}
	if !funk.ContainsString(dotColorModes, m.ColorMode) {
		m.ColorMode = def.DotMatrix.ColorMode
	}
	m.Background = validHex(m.Background, def.DotMatrix.Background)
	m.Color = validHex(m.Color, def.DotMatrix.Color)
	if m.Gamma == 0 {
		m.Gamma = def.DotMatrix.Gamma
	}
	m.Gamma = img.ClampRange(m.Gamma, 0.2, 3.0)

	p.ASCII.Normalize()
}

// LoadParams reads a TOML profile. Missing keys keep their default
// value and the result is normalized.
func LoadParams(r io.Reader) (Params, error) {
	p := DefaultParams()
	dec := toml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return p, err
	}
	p.Normalize()
	return p, nil
}

// WriteParams writes a full TOML profile.
func WriteParams(w io.Writer, p Params) error {
	enc := toml.NewEncoder(w).
		Indentation("  ").
		Order(toml.OrderPreserve)

	return enc.Encode(p)
}

func wrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h > 180 {
		h -= 360
	} else if h < -180 {
		h += 360
	}
	return h
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validHex(s, def string) string {
	if _, ok := img.ParseHex(s); ok {
		return s
	}
	return def
}
