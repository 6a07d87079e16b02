package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/pkg/ascii"
	"codeberg.org/altpic/altpic/pkg/effects"
	"codeberg.org/altpic/altpic/pkg/img"
)

// ErrNoSource is returned when a job carries no image.
var ErrNoSource = errors.New("no source image")

// Job describes one render pass. Source is never modified.
type Job struct {
	Source *img.Buffer
	Params effects.Params

	// ASCII forces the text generation even when the parameters
	// don't enable it (text export).
	ASCII bool

	// Seed makes the random stages reproducible when not zero.
	Seed int64
}

// Output is the result of a render pass.
type Output struct {
	Buffer  *img.Buffer
	ASCII   ascii.Result
	Elapsed time.Duration

	// Params are the normalized parameters of the pass.
	Params effects.Params
}

// HasASCII returns true when the output carries a text grid.
func (o Output) HasASCII() bool {
	return !o.ASCII.Empty()
}

// Process runs the effect pipeline on a copy of the job's source,
// then generates the ASCII grid from the final image. When the ASCII
// overlay is enabled, its glyphs are drawn over the output buffer.
func Process(ctx context.Context, job Job) (out Output, err error) {
	if job.Source == nil || job.Source.Empty() {
		return out, ErrNoSource
	}
	if err = ctx.Err(); err != nil {
		return out, err
	}

	start := time.Now()
	entry := log.WithField("size", fmt.Sprintf("%dx%d", job.Source.Width, job.Source.Height))

	p := job.Params
	p.Normalize()
	out.Params = p

	opts := []effects.RenderOption{effects.WithLogger(entry)}
	if job.Seed != 0 {
		opts = append(opts, effects.WithRand(rand.New(rand.NewSource(job.Seed))))
	}

	out.Buffer = job.Source.Clone()
	effects.Render(out.Buffer, p, opts...)

	if p.ASCII.Enabled || job.ASCII {
		if err = ctx.Err(); err != nil {
			return out, err
		}
		out.ASCII = ascii.Generate(out.Buffer, p.ASCII)
		if p.ASCII.Enabled && p.ASCII.Overlay {
			if err = ascii.Overlay(out.Buffer, out.ASCII, p.ASCII); err != nil {
				return out, fmt.Errorf("ascii overlay: %w", err)
			}
		}
	}

	out.Elapsed = time.Since(start)
	entry.WithField("elapsed", out.Elapsed).Debug("render pass")
	return out, nil
}
