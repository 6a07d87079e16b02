package effects

import (
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/pkg/img"
)

// RenderOption is a function that sets a render option.
type RenderOption func(r *renderer)

// WithRand sets the random source used by the glitch stage and the
// random dither algorithm.
func WithRand(rng *rand.Rand) RenderOption {
	return func(r *renderer) {
		r.rng = rng
	}
}

// WithLogger sets a log entry receiving one line per stage.
func WithLogger(entry *log.Entry) RenderOption {
	return func(r *renderer) {
		r.log = entry
	}
}

type renderer struct {
	rng *rand.Rand
	log *log.Entry
}

type stage struct {
	name    string
	enabled bool
	run     func()
}

// Render applies every effect described by p to the buffer, in a
// fixed order: adjust, posterize, sepia, invert, duotone, pixelate,
// dither, scanlines, halftone, dot-matrix and glitch.
//
// Halftone and dot-matrix repaint the whole image, so the stages
// after them work on their output.
//
// The buffer is modified in place and must not be used by anything
// else until Render returns. The parameters are normalized on a copy.
func Render(buf *img.Buffer, p Params, options ...RenderOption) {
	r := &renderer{}
	for _, fn := range options {
		fn(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	p.Normalize()
	t, d, s, m := p.Tone, p.Dither, p.Stylize, p.DotMatrix

	stages := []stage{
		{"adjust", t.Brightness != 0 || t.Contrast != 0 || t.Saturation != 0 || t.Hue != 0, func() {
			Adjust(buf, t.Brightness, t.Contrast, t.Saturation, t.Hue)
		}},
		{"posterize", t.Posterize < 32, func() {
			Posterize(buf, t.Posterize)
		}},
		{"sepia", t.Sepia > 0, func() {
			Sepia(buf, t.Sepia)
		}},
		{"invert", t.Invert > 0, func() {
			Invert(buf, t.Invert)
		}},
		{"duotone", t.Duotone > 0, func() {
			Duotone(buf, t.Duotone, img.HexOr(t.DuotoneA, img.Color{}), img.HexOr(t.DuotoneB, img.Color{R: 255, G: 255, B: 255}))
		}},
		{"pixelate", s.Pixelate > 1, func() {
			Pixelate(buf, s.Pixelate)
		}},
		{"dither", d.Algorithm.Valid(), func() {
			DitherFromParams(buf, d, r.rng)
		}},
		{"scanlines", s.Scanlines > 0, func() {
			Scanlines(buf, s.Scanlines, s.ScanlineWidth)
		}},
		{"halftone", s.Halftone > 0, func() {
			Halftone(buf, s.Halftone, s.HalftoneSize)
		}},
		{"dot_matrix", m.Intensity > 0, func() {
			DotMatrix(buf, m)
		}},
		{"glitch", s.Glitch > 0, func() {
			Glitch(buf, s.Glitch, r.rng)
		}},
	}

	start := time.Now()
	for _, x := range stages {
		if !x.enabled {
			if r.log != nil {
				r.log.WithField("stage", x.name).Trace("skip")
			}
			continue
		}

		t0 := time.Now()
		x.run()
		if r.log != nil {
			r.log.WithFields(log.Fields{
				"stage":   x.name,
				"elapsed": time.Since(t0),
			}).Debug("render stage")
		}
	}

	if r.log != nil {
		r.log.WithFields(log.Fields{
			"width":   buf.Width,
			"height":  buf.Height,
			"elapsed": time.Since(start),
		}).Debug("render done")
	}
}
