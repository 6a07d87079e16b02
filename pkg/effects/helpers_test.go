package effects

import (
	"codeberg.org/altpic/altpic/pkg/img"
)

// gradient returns a w×h buffer with a color ramp on each axis and a
// varying alpha channel.
func gradient(w, h int) *img.Buffer {
	buf := img.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := buf.Offset(x, y)
			buf.Pix[i] = uint8(x * 255 / max(1, w-1))
			buf.Pix[i+1] = uint8(y * 255 / max(1, h-1))
			buf.Pix[i+2] = uint8((x + y) * 255 / max(1, w+h-2))
			buf.Pix[i+3] = uint8(128 + (x+y)%128)
		}
	}
	return buf
}

// uniform returns a w×h buffer filled with a single opaque color.
func uniform(w, h int, c img.Color) *img.Buffer {
	buf := img.New(w, h)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = c.R, c.G, c.B, 255
	}
	return buf
}

func alphas(buf *img.Buffer) []uint8 {
	res := make([]uint8, 0, buf.Width*buf.Height)
	for i := 3; i < len(buf.Pix); i += 4 {
		res = append(res, buf.Pix[i])
	}
	return res
}

func pixel(buf *img.Buffer, x, y int) img.Color {
	i := buf.Offset(x, y)
	return img.Color{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2]}
}
