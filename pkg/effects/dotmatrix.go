package effects

import (
	"math"

	"github.com/gogpu/gg"

	"codeberg.org/altpic/altpic/pkg/img"
)

// DotMatrix repaints the image as a grid of shapes over a flat
// background. Each cell's shape grows with the darkness of the area
// it covers (or its brightness when p.Invert is set), through a
// gamma curve.
func DotMatrix(buf *img.Buffer, p DotMatrixParams) {
	if p.Intensity <= 0 || buf.Empty() {
		return
	}

	w, h := buf.Width, buf.Height
	grid := max(2, p.Size)
	half := float64(grid) / 2
	intensity := math.Min(p.Intensity, 100) / 100
	gamma := p.Gamma
	if gamma == 0 {
		gamma = 1
	}
	gamma = img.ClampRange(gamma, 0.2, 3.0)
	mono := img.HexOr(p.Color, img.Color{R: 255, G: 255, B: 255})

	dc := gg.NewContext(w, h)
	defer dc.Close() //nolint:errcheck

	dc.SetFillBrush(gg.Solid(ggColor(img.HexOr(p.Background, img.Color{}), 1)))
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	_ = dc.Fill()

	rows := (h + grid - 1) / grid
	cols := (w + grid - 1) / grid

	for row := 0; row < rows; row++ {
		cy := float64(row*grid) + half
		for col := 0; col < cols; col++ {
			cx := float64(col*grid) + half
			if p.Layout == LayoutBrick && row%2 == 1 {
				cx += half
			}

			c, ok := sampleArea(buf, cx, cy, half)
			if !ok {
				continue
			}

			lum := c.Luminance() / 255
			base := 1 - lum
			if p.Invert {
				base = lum
			}
			radius := math.Pow(img.ClampRange(base, 0, 1), gamma) * half * intensity
			if radius < 0.3 {
				continue
			}

			switch p.ColorMode {
			case DotColorMono:
				c = mono
			case DotColorInvert:
				c = img.Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
			}

			drawDot(dc, p.Shape, p.Soft, cx, cy, radius, c)
		}
	}

	_ = buf.CopyRGBFrom(dc.Image())
}

// sampleArea returns the average color of the pixels within half
// of (cx, cy), bounds included. It returns false when the area lies
// outside of the buffer.
func sampleArea(buf *img.Buffer, cx, cy, half float64) (img.Color, bool) {
	x0 := max(0, int(math.Round(cx-half)))
	y0 := max(0, int(math.Round(cy-half)))
	x1 := min(buf.Width-1, int(math.Round(cx+half)))
	y1 := min(buf.Height-1, int(math.Round(cy+half)))
	if x1 < x0 || y1 < y0 {
		return img.Color{}, false
	}

	var r, g, b int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := buf.Offset(x, y)
			r += int(buf.Pix[i])
			g += int(buf.Pix[i+1])
			b += int(buf.Pix[i+2])
		}
	}
	n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
	return img.Color{
		R: img.ToUint8(float64(r) / n),
		G: img.ToUint8(float64(g) / n),
		B: img.ToUint8(float64(b) / n),
	}, true
}

func drawDot(dc *gg.Context, shape string, soft bool, cx, cy, radius float64, c img.Color) {
	dc.SetFillBrush(gg.Solid(ggColor(c, 1)))

	switch shape {
	case ShapeSquare:
		dc.DrawRectangle(cx-radius, cy-radius, radius*2, radius*2)
	case ShapeDiamond:
		dc.MoveTo(cx, cy-radius)
		dc.LineTo(cx+radius, cy)
		dc.LineTo(cx, cy+radius)
		dc.LineTo(cx-radius, cy)
		dc.ClosePath()
	case ShapeRing:
		dc.SetFillRule(gg.FillRuleEvenOdd)
		defer dc.SetFillRule(gg.FillRuleNonZero)
		dc.DrawCircle(cx, cy, radius)
		dc.DrawCircle(cx, cy, radius*0.45)
	case ShapeCross:
		t := math.Max(1, radius*0.35)
		dc.DrawRectangle(cx-radius, cy-t, radius*2, t*2)
		_ = dc.Fill()
		dc.DrawRectangle(cx-t, cy-radius, t*2, radius*2)
	default:
		if soft {
			dc.SetFillBrush(gg.NewRadialGradientBrush(cx, cy, 0, radius).
				AddColorStop(0, ggColor(c, 1)).
				AddColorStop(1, ggColor(c, 0)))
		}
		dc.DrawCircle(cx, cy, radius)
	}

	_ = dc.Fill()
}
