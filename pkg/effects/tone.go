package effects

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"codeberg.org/altpic/altpic/pkg/img"
)

// eachPixel calls fn for every pixel of the buffer, rows being split
// across goroutines. fn receives the 4 bytes of one pixel and must
// only touch those.
func eachPixel(buf *img.Buffer, fn func(p []uint8)) {
	stride := buf.Width * 4
	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := buf.Pix[y*stride : (y+1)*stride]
			for i := 0; i < len(row); i += 4 {
				fn(row[i : i+4 : i+4])
			}
		}
	})
}

// Adjust applies brightness, contrast, saturation and hue, in that
// order. Every value is in [-100, 100] except hue, in degrees.
// Each step is clamped before the next one reads it.
func Adjust(buf *img.Buffer, brightness, contrast, saturation, hue float64) {
	hue = wrapHue(hue)
	if brightness == 0 && contrast == 0 && saturation == 0 && hue == 0 {
		return
	}

	offset := brightness * 2.55
	contrast = img.ClampRange(contrast, -100, 100)
	cf := (259 * (contrast + 255)) / (255 * (259 - contrast))

	eachPixel(buf, func(p []uint8) {
		r, g, b := float64(p[0]), float64(p[1]), float64(p[2])

		if offset != 0 {
			r = img.Clamp(r + offset)
			g = img.Clamp(g + offset)
			b = img.Clamp(b + offset)
		}

		if contrast != 0 {
			r = img.Clamp(cf*(r-128) + 128)
			g = img.Clamp(cf*(g-128) + 128)
			b = img.Clamp(cf*(b-128) + 128)
		}

		if saturation != 0 || hue != 0 {
			h, s, l := img.RGBToHSL(r, g, b)
			s = img.ClampRange(s+saturation, 0, 100)
			h = math.Mod(h+hue+360, 360)
			r, g, b = img.HSLToRGB(h, s, l)
		}

		p[0] = img.ToUint8(r)
		p[1] = img.ToUint8(g)
		p[2] = img.ToUint8(b)
	})
}

// Posterize reduces every channel to the given number of levels.
// It does nothing for 32 levels or more.
func Posterize(buf *img.Buffer, levels int) {
	if levels >= 32 {
		return
	}
	if levels < 2 {
		levels = 2
	}

	step := 255 / float64(levels-1)
	var lut [256]uint8
	for i := range lut {
		lut[i] = img.ToUint8(math.Round(math.Round(float64(i)/step) * step))
	}

	eachPixel(buf, func(p []uint8) {
		p[0] = lut[p[0]]
		p[1] = lut[p[1]]
		p[2] = lut[p[2]]
	})
}

// Sepia blends the image toward the sepia tone matrix output.
// amount is in [0, 100].
func Sepia(buf *img.Buffer, amount float64) {
	if amount <= 0 {
		return
	}
	a := math.Min(amount, 100) / 100

	eachPixel(buf, func(p []uint8) {
		r, g, b := float64(p[0]), float64(p[1]), float64(p[2])
		tr := 0.393*r + 0.769*g + 0.189*b
		tg := 0.349*r + 0.686*g + 0.168*b
		tb := 0.272*r + 0.534*g + 0.131*b
		p[0] = img.ToUint8(r + (tr-r)*a)
		p[1] = img.ToUint8(g + (tg-g)*a)
		p[2] = img.ToUint8(b + (tb-b)*a)
	})
}

// Invert blends every channel toward its complement.
// amount is in [0, 100].
func Invert(buf *img.Buffer, amount float64) {
	if amount <= 0 {
		return
	}
	a := math.Min(amount, 100) / 100

	var lut [256]uint8
	for i := range lut {
		v := float64(i)
		lut[i] = img.ToUint8(v + (255-2*v)*a)
	}

	eachPixel(buf, func(p []uint8) {
		p[0] = lut[p[0]]
		p[1] = lut[p[1]]
		p[2] = lut[p[2]]
	})
}

// Duotone maps each pixel's luminance to a gradient from ca (dark)
// to cb (light) and blends the result in. amount is in [0, 100].
func Duotone(buf *img.Buffer, amount float64, ca, cb img.Color) {
	if amount <= 0 {
		return
	}
	a := math.Min(amount, 100) / 100
	ar, ag, ab := float64(ca.R), float64(ca.G), float64(ca.B)
	dr, dg, db := float64(cb.R)-ar, float64(cb.G)-ag, float64(cb.B)-ab

	eachPixel(buf, func(p []uint8) {
		r, g, b := float64(p[0]), float64(p[1]), float64(p[2])
		lum := img.Luminance(r, g, b) / 255
		p[0] = img.ToUint8(r + (ar+dr*lum-r)*a)
		p[1] = img.ToUint8(g + (ag+dg*lum-g)*a)
		p[2] = img.ToUint8(b + (ab+db*lum-b)*a)
	})
}

// ApplyTone runs every tone step in order: adjust, posterize, sepia,
// invert and duotone.
func ApplyTone(buf *img.Buffer, p ToneParams) {
	Adjust(buf, p.Brightness, p.Contrast, p.Saturation, p.Hue)
	Posterize(buf, p.Posterize)
	Sepia(buf, p.Sepia)
	Invert(buf, p.Invert)
	Duotone(buf, p.Duotone,
		img.HexOr(p.DuotoneA, img.Color{}),
		img.HexOr(p.DuotoneB, img.Color{R: 255, G: 255, B: 255}),
	)
}
