package ascii

import (
	"bufio"
	"io"

	"github.com/fatih/color"

	"codeberg.org/altpic/altpic/pkg/img"
)

// WriteText writes the plain text grid, with a trailing newline.
func WriteText(w io.Writer, r Result) error {
	if r.Empty() {
		return nil
	}
	if _, err := io.WriteString(w, r.Text); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteANSI writes the grid with 24-bit terminal colors over the
// configured background. In color mode every glyph gets its cell's
// color; in mono mode they all use the configured color.
func WriteANSI(w io.Writer, r Result, p Params) error {
	if r.Empty() {
		return nil
	}

	bg := img.HexOr(p.Background, img.Color{})
	fg := img.HexOr(p.Color, img.Color{G: 255})
	blank := color.BgRGB(int(bg.R), int(bg.G), int(bg.B))
	blank.EnableColor()

	palette := map[img.Color]*color.Color{}
	painter := func(c img.Color) *color.Color {
		if x, ok := palette[c]; ok {
			return x
		}
		x := color.RGB(int(c.R), int(c.G), int(c.B)).
			AddBgRGB(int(bg.R), int(bg.G), int(bg.B))
		x.EnableColor()
		palette[c] = x
		return x
	}

	bw := bufio.NewWriter(w)
	for row, line := range r.Lines {
		for col, ch := range []rune(line) {
			if ch == ' ' {
				blank.Fprint(bw, " ") //nolint:errcheck
				continue
			}
			c := fg
			if p.ColorMode == ColorModeColor && row < len(r.Colors) && col < len(r.Colors[row]) {
				c = r.Colors[row][col]
			}
			painter(c).Fprint(bw, string(ch)) //nolint:errcheck
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
