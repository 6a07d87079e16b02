package effects

import (
	"math/rand"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/anthonynsimon/bild/transform"

	"codeberg.org/altpic/altpic/pkg/img"
)

// Algorithm is a dither algorithm name.
type Algorithm string

// Dither algorithms.
const (
	AlgoNone           Algorithm = "none"
	AlgoFloydSteinberg Algorithm = "floydSteinberg"
	AlgoBayer          Algorithm = "bayer"
	AlgoBayer4         Algorithm = "bayer4"
	AlgoBayer8         Algorithm = "bayer8"
	AlgoBayer16        Algorithm = "bayer16"
	AlgoAtkinson       Algorithm = "atkinson"
	AlgoSierra         Algorithm = "sierra"
	AlgoJJN            Algorithm = "jjn"
	AlgoStucki         Algorithm = "stucki"
	AlgoRandom         Algorithm = "random"
)

// Algorithms lists every algorithm that changes the image.
var Algorithms = []Algorithm{
	AlgoFloydSteinberg,
	AlgoBayer, AlgoBayer4, AlgoBayer8, AlgoBayer16,
	AlgoAtkinson, AlgoSierra, AlgoJJN, AlgoStucki,
	AlgoRandom,
}

// Valid returns true when the algorithm is known and not "none".
func (a Algorithm) Valid() bool {
	for _, x := range Algorithms {
		if x == a {
			return true
		}
	}
	return false
}

// DiffusionKernel defines an error diffusion matrix. The current
// pixel sits in the middle column of the first row, only the cells
// after it on that row and the rows below receive error.
type DiffusionKernel [][]float32

var kernels = map[Algorithm]DiffusionKernel{
	AlgoFloydSteinberg: {
		{0.0, 0.0, 7.0 / 16.0},
		{3.0 / 16.0, 5.0 / 16.0, 1.0 / 16.0},
	},

	AlgoAtkinson: {
		{0.0, 0.0, 0.0, 1.0 / 8.0, 1.0 / 8.0},
		{0.0, 1.0 / 8.0, 1.0 / 8.0, 1.0 / 8.0, 0.0},
		{0.0, 0.0, 1.0 / 8.0, 0.0, 0.0},
	},

	AlgoSierra: {
		{0.0, 0.0, 0.0, 5.0 / 32.0, 3.0 / 32.0},
		{2.0 / 32.0, 4.0 / 32.0, 5.0 / 32.0, 4.0 / 32.0, 2.0 / 32.0},
		{0.0, 2.0 / 32.0, 3.0 / 32.0, 2.0 / 32.0, 0.0},
	},

	AlgoJJN: {
		{0.0, 0.0, 0.0, 7.0 / 48.0, 5.0 / 48.0},
		{3.0 / 48.0, 5.0 / 48.0, 7.0 / 48.0, 5.0 / 48.0, 3.0 / 48.0},
		{1.0 / 48.0, 3.0 / 48.0, 5.0 / 48.0, 3.0 / 48.0, 1.0 / 48.0},
	},

	AlgoStucki: {
		{0.0, 0.0, 0.0, 8.0 / 42.0, 4.0 / 42.0},
		{2.0 / 42.0, 4.0 / 42.0, 8.0 / 42.0, 4.0 / 42.0, 2.0 / 42.0},
		{1.0 / 42.0, 2.0 / 42.0, 4.0 / 42.0, 2.0 / 42.0, 1.0 / 42.0},
	},
}

type tap struct {
	dx, dy int
	weight float32
}

// taps returns the non zero cells of the kernel relative to the
// current pixel.
func (k DiffusionKernel) taps() []tap {
	res := []tap{}
	for dy, row := range k {
		center := len(row) / 2
		for x, w := range row {
			if w == 0 || (dy == 0 && x <= center) {
				continue
			}
			res = append(res, tap{dx: x - center, dy: dy, weight: w})
		}
	}
	return res
}

// DitherOptions holds the settings of one dither pass.
type DitherOptions struct {
	Algorithm  Algorithm
	Strength   float64 // 0-100
	Serpentine bool
	BlockSize  int
	BayerSize  int        // matrix size for AlgoBayer
	Rand       *rand.Rand // noise source for AlgoRandom
}

// Dither quantizes the buffer's colors to the palette.
//
// When BlockSize is greater than 1, the image is first reduced with
// a box filter, dithered, then scaled back up with nearest neighbor
// sampling so every dither cell stays a hard block.
//
// An unknown algorithm leaves the buffer unchanged. An empty palette
// is replaced by a single black color.
func Dither(buf *img.Buffer, pal Palette, opts DitherOptions) {
	if !opts.Algorithm.Valid() || buf.Empty() {
		return
	}
	pal = pal.orFallback()
	opts.Strength = img.ClampRange(opts.Strength, 0, 100)

	if opts.BlockSize <= 1 {
		ditherBuffer(buf, pal, opts)
		return
	}

	sw := max(1, buf.Width/opts.BlockSize)
	sh := max(1, buf.Height/opts.BlockSize)
	small := img.FromImage(transform.Resize(buf.Opaque(), sw, sh, transform.Box))
	ditherBuffer(small, pal, opts)

	large := transform.Resize(small.Image(), buf.Width, buf.Height, transform.NearestNeighbor)
	_ = buf.CopyRGBFrom(large)
}

func ditherBuffer(buf *img.Buffer, pal Palette, opts DitherOptions) {
	s := opts.Strength / 100

	switch opts.Algorithm {
	case AlgoBayer:
		ditherOrdered(buf, pal, s, bayerMatrix(opts.BayerSize))
	case AlgoBayer4:
		ditherOrdered(buf, pal, s, bayerMatrix(4))
	case AlgoBayer8:
		ditherOrdered(buf, pal, s, bayerMatrix(8))
	case AlgoBayer16:
		ditherOrdered(buf, pal, s, bayerMatrix(16))
	case AlgoRandom:
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		ditherRandom(buf, pal, s, rng)
	default:
		if k, ok := kernels[opts.Algorithm]; ok {
			ditherDiffusion(buf, pal, float32(s), k.taps(), opts.Serpentine)
		}
	}
}

// ditherOrdered adds the matrix threshold to every channel before
// looking up the nearest color. Rows don't depend on each other.
func ditherOrdered(buf *img.Buffer, pal Palette, s float64, m BayerMatrix) {
	size := m.Size()
	div := float64(size * size)

	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := m[y%size]
			for x := 0; x < buf.Width; x++ {
				i := buf.Offset(x, y)
				t := (float64(row[x%size])/div - 0.5) * 64 * s
				c := pal.Nearest(
					img.Clamp(float64(buf.Pix[i])+t),
					img.Clamp(float64(buf.Pix[i+1])+t),
					img.Clamp(float64(buf.Pix[i+2])+t),
				)
				buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = c.R, c.G, c.B
			}
		}
	})
}

// ditherRandom adds independent uniform noise in [-64, 64]*s to each
// channel. It runs on a single goroutine so a seeded source gives a
// reproducible output.
func ditherRandom(buf *img.Buffer, pal Palette, s float64, rng *rand.Rand) {
	noise := func() float64 {
		return (rng.Float64() - 0.5) * 128 * s
	}
	for i := 0; i < len(buf.Pix); i += 4 {
		c := pal.Nearest(
			img.Clamp(float64(buf.Pix[i])+noise()),
			img.Clamp(float64(buf.Pix[i+1])+noise()),
			img.Clamp(float64(buf.Pix[i+2])+noise()),
		)
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = c.R, c.G, c.B
	}
}

// ditherDiffusion runs an error diffusion pass. Each pixel reads the
// error left by the previous ones, so the scan is strictly sequential.
// With serpentine, odd rows go right to left and the kernel is
// mirrored.
func ditherDiffusion(buf *img.Buffer, pal Palette, s float32, taps []tap, serpentine bool) {
	w, h := buf.Width, buf.Height
	acc := make([]float32, w*h*3)
	for i, j := 0, 0; i < len(buf.Pix); i, j = i+4, j+3 {
		acc[j] = float32(buf.Pix[i])
		acc[j+1] = float32(buf.Pix[i+1])
		acc[j+2] = float32(buf.Pix[i+2])
	}

	for y := 0; y < h; y++ {
		rev := serpentine && y%2 == 1
		dir := 1
		if rev {
			dir = -1
		}

		for xi := 0; xi < w; xi++ {
			x := xi
			if rev {
				x = w - 1 - xi
			}
			n := y*w + x
			r := clamp32(acc[n*3])
			g := clamp32(acc[n*3+1])
			b := clamp32(acc[n*3+2])

			c := pal.Nearest(float64(r), float64(g), float64(b))
			buf.Pix[n*4], buf.Pix[n*4+1], buf.Pix[n*4+2] = c.R, c.G, c.B

			er := (r - float32(c.R)) * s
			eg := (g - float32(c.G)) * s
			eb := (b - float32(c.B)) * s
			if er == 0 && eg == 0 && eb == 0 {
				continue
			}

			for _, t := range taps {
				sx, sy := x+t.dx*dir, y+t.dy
				if sx < 0 || sx >= w || sy >= h {
					continue
				}
				si := (sy*w + sx) * 3
				acc[si] += er * t.weight
				acc[si+1] += eg * t.weight
				acc[si+2] += eb * t.weight
			}
		}
	}
}

func clamp32(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// DitherFromParams runs Dither with the palette and options described
// by p. rng may be nil.
func DitherFromParams(buf *img.Buffer, p DitherParams, rng *rand.Rand) {
	if p.Algorithm == AlgoNone || p.Algorithm == "" {
		return
	}
	pal := GetPalette(p.Palette, p.Colors, p.CustomColors)
	Dither(buf, pal, DitherOptions{
		Algorithm:  p.Algorithm,
		Strength:   p.Strength,
		Serpentine: p.Serpentine,
		BlockSize:  p.BlockSize,
		BayerSize:  p.BayerSize,
		Rand:       rng,
	})
}
