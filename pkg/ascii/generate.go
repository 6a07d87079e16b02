package ascii

import (
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"codeberg.org/altpic/altpic/pkg/img"
)

// Result is a character grid built from an image.
type Result struct {
	Text   string        `json:"text"`
	Lines  []string      `json:"lines"`
	Colors [][]img.Color `json:"colors"`
	Cols   int           `json:"cols"`
	Rows   int           `json:"rows"`
}

// Empty returns true when the result holds no cell.
func (r Result) Empty() bool {
	return r.Cols == 0 || r.Rows == 0
}

// Glyph returns the character of a cell.
func (r Result) Glyph(col, row int) rune {
	if row < 0 || row >= len(r.Lines) {
		return ' '
	}
	line := []rune(r.Lines[row])
	if col < 0 || col >= len(line) {
		return ' '
	}
	return line[col]
}

// Generate builds the character grid of a buffer.
//
// Every cell covers CellSize×2*CellSize pixels, to compensate for the
// height of monospace glyphs. The cell's average luminance selects a
// character from the charset, darkest first. With edge detection on,
// cells sitting on a strong edge get a line glyph instead.
//
// An empty charset, or an image smaller than one cell, gives an
// empty result.
func Generate(buf *img.Buffer, p Params) Result {
	chars := p.Chars()
	cell := max(1, p.CellSize)
	cellH := cell * 2

	res := Result{Lines: []string{}, Colors: [][]img.Color{}}
	if len(chars) == 0 || buf.Empty() {
		return res
	}

	cols := buf.Width / cell
	rows := buf.Height / cellH
	if cols == 0 || rows == 0 {
		return res
	}

	var edges []float32
	if p.Edges {
		edges = sobel(buf)
	}

	lines := make([]string, rows)
	colors := make([][]img.Color, rows)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for row := range rows {
		g.Go(func() error {
			lines[row], colors[row] = generateRow(buf, row, cols, cell, chars, edges)
			return nil
		})
	}
	_ = g.Wait()

	res.Lines = lines
	res.Colors = colors
	res.Cols = cols
	res.Rows = rows
	res.Text = strings.Join(lines, "\n")
	return res
}

func generateRow(buf *img.Buffer, row, cols, cell int, chars []rune, edges []float32) (string, []img.Color) {
	cellH := cell * 2
	y0 := row * cellH
	line := make([]rune, cols)
	colors := make([]img.Color, cols)

	for col := range cols {
		x0 := col * cell

		var r, g, b int
		for y := y0; y < y0+cellH; y++ {
			for x := x0; x < x0+cell; x++ {
				i := buf.Offset(x, y)
				r += int(buf.Pix[i])
				g += int(buf.Pix[i+1])
				b += int(buf.Pix[i+2])
			}
		}
		n := float64(cell * cellH)
		c := img.Color{
			R: img.ToUint8(float64(r) / n),
			G: img.ToUint8(float64(g) / n),
			B: img.ToUint8(float64(b) / n),
		}
		colors[col] = c

		if edges != nil {
			e := edges[(y0+cellH/2)*buf.Width+x0+cell/2]
			if e > 50 {
				line[col] = edgeChars[min(int(e/51), len(edgeChars)-1)]
				continue
			}
		}

		idx := int(c.Luminance() / 255 * float64(len(chars)-1))
		line[col] = chars[min(max(idx, 0), len(chars)-1)]
	}

	return string(line), colors
}
