package effects

import (
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"codeberg.org/altpic/altpic/pkg/img"
)

// Pixelate replaces every size×size block with its average color.
// It does nothing when size is 1 or less.
func Pixelate(buf *img.Buffer, size int) {
	if size <= 1 || buf.Empty() {
		return
	}

	blockRows := (buf.Height + size - 1) / size
	parallel.Line(blockRows, func(start, end int) {
		for by := start; by < end; by++ {
			y0 := by * size
			y1 := min(y0+size, buf.Height)
			for x0 := 0; x0 < buf.Width; x0 += size {
				x1 := min(x0+size, buf.Width)

				var r, g, b int
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						i := buf.Offset(x, y)
						r += int(buf.Pix[i])
						g += int(buf.Pix[i+1])
						b += int(buf.Pix[i+2])
					}
				}
				n := float64((y1 - y0) * (x1 - x0))
				c := img.Color{
					R: img.ToUint8(float64(r) / n),
					G: img.ToUint8(float64(g) / n),
					B: img.ToUint8(float64(b) / n),
				}

				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						i := buf.Offset(x, y)
						buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = c.R, c.G, c.B
					}
				}
			}
		}
	})
}

// Scanlines darkens bands of lineWidth rows, every 2*lineWidth rows,
// with black at intensity/100*0.7 opacity.
func Scanlines(buf *img.Buffer, intensity float64, lineWidth int) {
	if intensity <= 0 || buf.Empty() {
		return
	}
	if lineWidth < 1 {
		lineWidth = 1
	}
	alpha := math.Min(intensity, 100) / 100 * 0.7

	dc := gg.NewContext(buf.Width, buf.Height)
	defer dc.Close() //nolint:errcheck

	dc.SetRGBA(0, 0, 0, alpha)
	for y := 0; y < buf.Height; y += lineWidth * 2 {
		dc.DrawRectangle(0, float64(y), float64(buf.Width), float64(lineWidth))
	}
	if err := dc.Fill(); err != nil {
		return
	}

	_ = buf.Composite(dc.Image())
}

// Halftone repaints the image as colored dots over a black
// background. Samples are taken every 2*dotSize pixels and the dot
// radius grows as the sample gets darker.
func Halftone(buf *img.Buffer, intensity float64, dotSize int) {
	if intensity <= 0 || buf.Empty() {
		return
	}
	if dotSize < 1 {
		dotSize = 1
	}
	a := math.Min(intensity, 100) / 100
	ds := float64(dotSize)

	dc := gg.NewContext(buf.Width, buf.Height)
	defer dc.Close() //nolint:errcheck

	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(0, 0, float64(buf.Width), float64(buf.Height))
	_ = dc.Fill()

	for y := 0; y < buf.Height; y += dotSize * 2 {
		for x := 0; x < buf.Width; x += dotSize * 2 {
			i := buf.Offset(x, y)
			r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
			lum := img.Luminance(float64(r), float64(g), float64(b)) / 255
			radius := (1 - lum) * ds * a
			if radius <= 0.2 {
				continue
			}
			dc.SetFillBrush(gg.Solid(ggColor(img.Color{R: r, G: g, B: b}, 1)))
			dc.DrawCircle(float64(x)+ds, float64(y)+ds, radius)
			_ = dc.Fill()
		}
	}

	_ = buf.CopyRGBFrom(dc.Image())
}

// Glitch displaces random horizontal slices and, above intensity 30,
// tears the red channel apart from the others. The output depends on
// rng; a nil rng uses a time seeded source.
func Glitch(buf *img.Buffer, intensity float64, rng *rand.Rand) {
	if intensity <= 0 || buf.Empty() {
		return
	}
	intensity = math.Min(intensity, 100)
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	w, h := buf.Width, buf.Height
	slices := int(intensity/5) + 1
	maxShift := int(math.Floor(float64(w) * intensity / 200))

	canvas := buf.Opaque()
	for range slices {
		y := rng.Intn(h)
		sh := int(rng.Float64()*float64(h)/10) + 1
		shift := int(math.Floor(rng.Float64()*float64(maxShift)*2)) - maxShift

		r := image.Rect(0, y, w, min(y+sh, h))
		slice := image.NewRGBA(r)
		draw.Draw(slice, r, canvas, r.Min, draw.Src)
		draw.Draw(canvas, r.Add(image.Pt(shift, 0)), slice, r.Min, draw.Src)
	}

	if intensity > 30 {
		offset := int(intensity/15) * 4
		src := append([]uint8(nil), canvas.Pix...)
		for i := 0; i+offset < len(src); i += 4 {
			canvas.Pix[i] = src[i+offset]
		}
	}

	_ = buf.CopyRGBFrom(canvas)
}

// ggColor converts c for gg, which truncates channel values when it
// writes pixels.
func ggColor(c img.Color, alpha float64) gg.RGBA {
	return gg.RGBA{
		R: (float64(c.R) + 0.5) / 255,
		G: (float64(c.G) + 0.5) / 255,
		B: (float64(c.B) + 0.5) / 255,
		A: alpha,
	}
}
