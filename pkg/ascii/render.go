package ascii

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"codeberg.org/altpic/altpic/pkg/img"
)

// exportFontSize and exportPadding define the ASCII image export.
const (
	exportFontSize = 10
	exportPadding  = 8
)

var monoFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gomono.TTF)
})

func newFace(size float64) (font.Face, error) {
	f, err := monoFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RenderOverlay draws every non blank glyph at its cell position, in
// its cell color, on a transparent image of cols*cellSize by
// rows*cellSize*2 pixels. opacity is in [0, 100].
func RenderOverlay(r Result, cellSize int, opacity float64) (*image.RGBA, error) {
	cell := max(1, cellSize)
	dst := image.NewRGBA(image.Rect(0, 0, r.Cols*cell, r.Rows*cell*2))
	if r.Empty() {
		return dst, nil
	}

	face, err := newFace(float64(cell * 2))
	if err != nil {
		return nil, err
	}
	defer face.Close() //nolint:errcheck

	alpha := img.ToUint8(img.ClampRange(opacity, 0, 100) / 100 * 255)
	ascent := face.Metrics().Ascent
	d := &font.Drawer{Dst: dst, Face: face}

	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			ch := r.Glyph(col, row)
			if ch == ' ' {
				continue
			}
			c := r.Colors[row][col]
			d.Src = image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha})
			d.Dot = fixed.Point26_6{
				X: fixed.I(col * cell),
				Y: fixed.I(row*cell*2) + ascent,
			}
			d.DrawString(string(ch))
		}
	}

	return dst, nil
}

// Overlay draws the result's glyphs over the buffer. The overlay is
// stretched to the buffer size when the grid does not cover it
// exactly.
func Overlay(buf *img.Buffer, r Result, p Params) error {
	layer, err := RenderOverlay(r, p.CellSize, p.OverlayOpacity)
	if err != nil {
		return err
	}
	if layer.Bounds().Empty() {
		return nil
	}

	if layer.Bounds().Dx() != buf.Width || layer.Bounds().Dy() != buf.Height {
		scaled := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), layer, layer.Bounds(), draw.Src, nil)
		layer = scaled
	}
	return buf.Composite(layer)
}

// RenderImage draws the text grid as an image: 10px monospace glyphs
// with an 8px margin, over the configured background. In mono mode
// the glyphs use the configured color, in color mode their cell color.
func RenderImage(r Result, p Params) (*image.RGBA, error) {
	face, err := newFace(exportFontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close() //nolint:errcheck

	advance, _ := face.GlyphAdvance('M')
	width := (advance * fixed.Int26_6(r.Cols)).Ceil() + exportPadding*2
	height := r.Rows*exportFontSize + exportPadding*2

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := img.HexOr(p.Background, img.Color{})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	fg := image.NewUniform(img.HexOr(p.Color, img.Color{G: 255}))
	d := &font.Drawer{Dst: dst, Face: face, Src: fg}

	for row, line := range r.Lines {
		y := exportPadding + (row+1)*exportFontSize
		if p.ColorMode != ColorModeColor {
			d.Dot = fixed.P(exportPadding, y)
			d.DrawString(line)
			continue
		}

		for col, ch := range []rune(line) {
			if ch == ' ' {
				continue
			}
			d.Src = image.NewUniform(r.Colors[row][col])
			d.Dot = fixed.Point26_6{
				X: fixed.I(exportPadding) + advance*fixed.Int26_6(col),
				Y: fixed.I(y),
			}
			d.DrawString(string(ch))
		}
	}

	return dst, nil
}
