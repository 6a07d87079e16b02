package effects

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/altpic/altpic/pkg/img"
)

func TestBayerMatrix(t *testing.T) {
	assert.Equal(t, BayerMatrix{{0}}, MakeBayerMatrix(1))
	assert.Equal(t, BayerMatrix{{0, 2}, {3, 1}}, MakeBayerMatrix(2))
	assert.Equal(t, BayerMatrix{
		{0, 8, 2, 10},
		{12, 4, 14, 6},
		{3, 11, 1, 9},
		{15, 7, 13, 5},
	}, MakeBayerMatrix(4))

	for _, n := range []int{2, 4, 8, 16, 32} {
		t.Run(fmt.Sprintf("permutation %d", n), func(t *testing.T) {
			m := MakeBayerMatrix(n)
			require.Equal(t, n, m.Size())

			seen := make([]int, n*n)
			for _, row := range m {
				require.Len(t, row, n)
				for _, v := range row {
					require.True(t, v >= 0 && v < n*n)
					seen[v]++
				}
			}
			for v, count := range seen {
				assert.Equal(t, 1, count, "value %d", v)
			}
		})
	}

	assert.Equal(t, 4, MakeBayerMatrix(6).Size())
	assert.Equal(t, 4, bayerMatrix(5).Size())
	assert.Equal(t, 16, bayerMatrix(16).Size())
}

func TestKernelTaps(t *testing.T) {
	tests := []struct {
		algo  Algorithm
		count int
		sum   float32
	}{
		{AlgoFloydSteinberg, 4, 1},
		{AlgoAtkinson, 6, 0.75},
		{AlgoSierra, 10, 1},
		{AlgoJJN, 12, 1},
		{AlgoStucki, 12, 1},
	}

	for _, test := range tests {
		t.Run(string(test.algo), func(t *testing.T) {
			taps := kernels[test.algo].taps()
			assert.Len(t, taps, test.count)

			var sum float32
			for _, x := range taps {
				assert.True(t, x.dy > 0 || x.dx > 0, "tap %+v goes backward", x)
				sum += x.weight
			}
			assert.InDelta(t, test.sum, sum, 1e-6)
		})
	}

	assert.Equal(t, []tap{
		{1, 0, 7.0 / 16.0},
		{-1, 1, 3.0 / 16.0},
		{0, 1, 5.0 / 16.0},
		{1, 1, 1.0 / 16.0},
	}, kernels[AlgoFloydSteinberg].taps())
}

func TestDitherUsesPalette(t *testing.T) {
	pal, _ := Preset("pico8")
	rng := rand.New(rand.NewSource(1))

	for _, algo := range Algorithms {
		for _, serpentine := range []bool{false, true} {
			for _, bs := range []int{1, 3} {
				name := fmt.Sprintf("%s serpentine=%v block=%d", algo, serpentine, bs)
				t.Run(name, func(t *testing.T) {
					buf := gradient(23, 17)
					expected := alphas(buf)

					Dither(buf, pal, DitherOptions{
						Algorithm:  algo,
						Strength:   100,
						Serpentine: serpentine,
						BlockSize:  bs,
						BayerSize:  8,
						Rand:       rng,
					})

					for y := 0; y < buf.Height; y++ {
						for x := 0; x < buf.Width; x++ {
							c := pixel(buf, x, y)
							require.True(t, pal.Contains(c), "%v at %d,%d", c, x, y)
						}
					}
					assert.Equal(t, expected, alphas(buf))
				})
			}
		}
	}
}

func TestDitherNoStrength(t *testing.T) {
	pal, _ := Preset("cga")
	src := gradient(19, 11)

	expected := src.Clone()
	for i := 0; i < len(expected.Pix); i += 4 {
		c := pal.Nearest(float64(expected.Pix[i]), float64(expected.Pix[i+1]), float64(expected.Pix[i+2]))
		expected.Pix[i], expected.Pix[i+1], expected.Pix[i+2] = c.R, c.G, c.B
	}

	algos := []Algorithm{
		AlgoFloydSteinberg, AlgoAtkinson, AlgoSierra, AlgoJJN, AlgoStucki,
		AlgoBayer4, AlgoBayer8, AlgoBayer16, AlgoRandom,
	}
	for _, algo := range algos {
		t.Run(string(algo), func(t *testing.T) {
			buf := src.Clone()
			Dither(buf, pal, DitherOptions{Algorithm: algo, Strength: 0, Serpentine: true})
			assert.Equal(t, expected.Pix, buf.Pix)
		})
	}
}

func TestDitherBayerGray(t *testing.T) {
	buf := uniform(4, 4, img.Color{128, 128, 128})
	Dither(buf, GetPalette("bw", 2, ""), DitherOptions{Algorithm: AlgoBayer4, Strength: 100})

	b := img.Color{0, 0, 0}
	w := img.Color{255, 255, 255}
	expected := [][]img.Color{
		{b, w, b, w},
		{w, b, w, b},
		{b, w, b, w},
		{w, b, w, b},
	}

	for y, row := range expected {
		for x, c := range row {
			assert.Equal(t, c, pixel(buf, x, y), "pixel %d,%d", x, y)
		}
	}

	again := uniform(4, 4, img.Color{128, 128, 128})
	Dither(again, GetPalette("bw", 2, ""), DitherOptions{Algorithm: AlgoBayer, BayerSize: 4, Strength: 100})
	assert.Equal(t, buf.Pix, again.Pix)
}

func TestDitherFloydSteinberg(t *testing.T) {
	// A mid gray row alternates once the error builds up.
	buf := uniform(4, 1, img.Color{128, 128, 128})
	Dither(buf, paletteBW, DitherOptions{Algorithm: AlgoFloydSteinberg, Strength: 100})

	assert.Equal(t, []img.Color{
		{255, 255, 255}, {0, 0, 0}, {255, 255, 255}, {0, 0, 0},
	}, []img.Color{pixel(buf, 0, 0), pixel(buf, 1, 0), pixel(buf, 2, 0), pixel(buf, 3, 0)})
}

func TestDitherSerpentine(t *testing.T) {
	src := gradient(9, 6)

	a := src.Clone()
	Dither(a, paletteBW, DitherOptions{Algorithm: AlgoStucki, Strength: 100})
	b := src.Clone()
	Dither(b, paletteBW, DitherOptions{Algorithm: AlgoStucki, Strength: 100, Serpentine: true})

	// The first row is scanned the same way in both modes.
	assert.Equal(t, a.Pix[:9*4], b.Pix[:9*4])
}

func TestDitherRandomSeed(t *testing.T) {
	src := gradient(16, 16)
	pal := GetPalette("gameboy", 4, "")

	a := src.Clone()
	Dither(a, pal, DitherOptions{Algorithm: AlgoRandom, Strength: 100, Rand: rand.New(rand.NewSource(42))})
	b := src.Clone()
	Dither(b, pal, DitherOptions{Algorithm: AlgoRandom, Strength: 100, Rand: rand.New(rand.NewSource(42))})

	assert.Equal(t, a.Pix, b.Pix)
}

func TestDitherNoop(t *testing.T) {
	src := gradient(8, 8)

	for _, algo := range []Algorithm{AlgoNone, "", "unknown"} {
		buf := src.Clone()
		Dither(buf, paletteBW, DitherOptions{Algorithm: algo, Strength: 100})
		assert.Equal(t, src.Pix, buf.Pix)

		DitherFromParams(buf, DitherParams{Algorithm: algo, Palette: "bw", Colors: 2, Strength: 100}, nil)
		assert.Equal(t, src.Pix, buf.Pix)
	}

	empty := img.New(0, 0)
	Dither(empty, paletteBW, DitherOptions{Algorithm: AlgoFloydSteinberg})
	assert.Empty(t, empty.Pix)
}

func TestDitherEmptyPalette(t *testing.T) {
	buf := gradient(5, 5)
	assert.NotPanics(t, func() {
		Dither(buf, Palette{}, DitherOptions{Algorithm: AlgoAtkinson, Strength: 100})
	})
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			assert.Equal(t, img.Color{}, pixel(buf, x, y))
		}
	}
}

func TestDitherBlockSize(t *testing.T) {
	buf := gradient(12, 12)
	Dither(buf, paletteBW, DitherOptions{Algorithm: AlgoFloydSteinberg, Strength: 100, BlockSize: 4})

	// Every 4×4 block holds a single color.
	for by := 0; by < 3; by++ {
		for bx := 0; bx < 3; bx++ {
			c := pixel(buf, bx*4, by*4)
			for y := by * 4; y < by*4+4; y++ {
				for x := bx * 4; x < bx*4+4; x++ {
					assert.Equal(t, c, pixel(buf, x, y))
				}
			}
		}
	}

	// Blocks larger than the image still work.
	buf = gradient(3, 2)
	Dither(buf, paletteBW, DitherOptions{Algorithm: AlgoBayer8, Strength: 100, BlockSize: 10})
	c := pixel(buf, 0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, c, pixel(buf, x, y))
		}
	}
}
