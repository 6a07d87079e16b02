package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/altpic/altpic/pkg/img"
)

func TestToneIdentity(t *testing.T) {
	src := gradient(17, 9)
	buf := src.Clone()

	ApplyTone(buf, DefaultParams().Tone)
	assert.Equal(t, src.Pix, buf.Pix)

	Adjust(buf, 0, 0, 0, 360)
	Posterize(buf, 32)
	Posterize(buf, 200)
	Sepia(buf, 0)
	Invert(buf, 0)
	Duotone(buf, 0, img.Color{}, img.Color{R: 255})
	assert.Equal(t, src.Pix, buf.Pix)
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name     string
		src      img.Color
		args     [4]float64
		expected img.Color
	}{
		{"brightness up", img.Color{100, 150, 250}, [4]float64{20, 0, 0, 0}, img.Color{151, 201, 255}},
		{"brightness max", img.Color{0, 10, 20}, [4]float64{100, 0, 0, 0}, img.Color{255, 255, 255}},
		{"brightness min", img.Color{200, 10, 20}, [4]float64{-100, 0, 0, 0}, img.Color{0, 0, 0}},
		{"contrast max", img.Color{127, 129, 200}, [4]float64{0, 100, 0, 0}, img.Color{126, 130, 255}},
		{"contrast", img.Color{100, 128, 200}, [4]float64{0, 50, 0, 0}, img.Color{86, 128, 235}},
		{"desaturate", img.Color{255, 0, 0}, [4]float64{0, 0, -100, 0}, img.Color{128, 128, 128}},
		{"hue", img.Color{255, 0, 0}, [4]float64{0, 0, 0, 120}, img.Color{0, 255, 0}},
		{"hue negative", img.Color{255, 0, 0}, [4]float64{0, 0, 0, -120}, img.Color{0, 0, 255}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := uniform(1, 1, test.src)
			Adjust(buf, test.args[0], test.args[1], test.args[2], test.args[3])
			assert.Equal(t, test.expected, pixel(buf, 0, 0))
		})
	}
}

func TestPosterize(t *testing.T) {
	buf := gradient(64, 4)
	Posterize(buf, 2)
	for i := 0; i < len(buf.Pix); i += 4 {
		for _, v := range buf.Pix[i : i+3] {
			assert.Contains(t, []uint8{0, 255}, v)
		}
	}

	buf = uniform(1, 1, img.Color{100, 128, 200})
	Posterize(buf, 3)
	assert.Equal(t, img.Color{128, 128, 255}, pixel(buf, 0, 0))
}

func TestSepia(t *testing.T) {
	buf := uniform(1, 1, img.Color{100, 100, 100})
	Sepia(buf, 100)
	assert.Equal(t, img.Color{135, 120, 94}, pixel(buf, 0, 0))

	buf = uniform(1, 1, img.Color{100, 100, 100})
	Sepia(buf, 50)
	assert.Equal(t, img.Color{118, 110, 97}, pixel(buf, 0, 0))
}

func TestInvert(t *testing.T) {
	buf := uniform(1, 1, img.Color{0, 100, 255})
	Invert(buf, 100)
	assert.Equal(t, img.Color{255, 155, 0}, pixel(buf, 0, 0))

	buf = uniform(1, 1, img.Color{0, 100, 255})
	Invert(buf, 50)
	assert.Equal(t, img.Color{128, 128, 128}, pixel(buf, 0, 0))
}

func TestDuotone(t *testing.T) {
	a := img.Color{R: 255}
	b := img.Color{B: 255}

	buf := uniform(2, 1, img.Color{})
	i := buf.Offset(1, 0)
	buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = 255, 255, 255

	Duotone(buf, 100, a, b)
	assert.Equal(t, a, pixel(buf, 0, 0))
	assert.Equal(t, b, pixel(buf, 1, 0))
}

func TestToneKeepsAlpha(t *testing.T) {
	buf := gradient(13, 7)
	expected := alphas(buf)

	ApplyTone(buf, ToneParams{
		Brightness: 20,
		Contrast:   -30,
		Saturation: 40,
		Hue:        90,
		Posterize:  4,
		Sepia:      50,
		Invert:     30,
		Duotone:    60,
		DuotoneA:   "#102030",
		DuotoneB:   "#f0e0d0",
	})
	assert.Equal(t, expected, alphas(buf))
}
