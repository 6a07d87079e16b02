package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/configs"
	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/ascii"
	"codeberg.org/altpic/altpic/pkg/img"
)

type renderFlags struct {
	profile  string
	output   string
	text     string
	asciiPNG string
	maxSize  int
	seed     int64
	settings []string
}

var renderOpts renderFlags

func init() {
	rootCmd.AddCommand(renderCmd)

	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.profile, "profile", "p", "", "render profile (TOML)")
	f.StringVarP(&renderOpts.output, "output", "o", "out.png", "output image (png, jpg or gif)")
	f.StringVar(&renderOpts.text, "txt", "", "also write the ASCII text to this file")
	f.StringVar(&renderOpts.asciiPNG, "ascii-png", "", "also write the ASCII art as an image")
	f.IntVar(&renderOpts.maxSize, "max-size", 0, "fit the source image in a square of this size")
	f.Int64Var(&renderOpts.seed, "seed", 0, "random seed for the glitch and random dither stages")
	f.StringArrayVarP(&renderOpts.settings, "set", "s", nil, "set a parameter (ie. tone.brightness=20)")
}

var renderCmd = &cobra.Command{
	Use:   "render <input>",
	Short: "Apply the effects of a profile to an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func loadSource(src string, maxSize int) (*img.Buffer, error) {
	if maxSize <= 0 {
		maxSize = configs.Config.Render.MaxSize
	}

	buf, format, err := img.Load(src, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", src, err)
	}
	log.WithFields(log.Fields{
		"src":    src,
		"format": format,
		"size":   fmt.Sprintf("%dx%d", buf.Width, buf.Height),
	}).Debug("image loaded")

	return buf.Fit(maxSize, maxSize), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := loadParams(renderOpts.profile, renderOpts.settings)
	if err != nil {
		return err
	}

	src, err := loadSource(args[0], renderOpts.maxSize)
	if err != nil {
		return err
	}

	out, err := render.Process(cmd.Context(), render.Job{
		Source: src,
		Params: p,
		ASCII:  renderOpts.text != "" || renderOpts.asciiPNG != "",
		Seed:   renderOpts.seed,
	})
	if err != nil {
		return err
	}

	if err := writeOutputs(out, p.ASCII, renderOpts.output, renderOpts.text, renderOpts.asciiPNG); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"output":  renderOpts.output,
		"elapsed": out.Elapsed,
	}).Info("image rendered")
	return nil
}

// writeOutputs writes the rendered image and, when asked, the ASCII
// text and image exports. Empty filenames are skipped.
func writeOutputs(out render.Output, ap ascii.Params, output, text, asciiPNG string) error {
	if output != "" {
		if err := writeImage(output, out.Buffer); err != nil {
			return err
		}
	}

	if text != "" {
		if err := writeFile(text, func(fd *os.File) error {
			return ascii.WriteText(fd, out.ASCII)
		}); err != nil {
			return err
		}
	}

	if asciiPNG != "" {
		m, err := ascii.RenderImage(out.ASCII, ap)
		if err != nil {
			return err
		}
		if err := writeImage(asciiPNG, img.FromImage(m)); err != nil {
			return err
		}
	}

	return nil
}

func writeImage(filename string, buf *img.Buffer) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return writeFile(filename, func(fd *os.File) error {
		_, err := buf.Encode(fd, img.EncodeOptions{Format: format, Compression: img.CompressionBest})
		return err
	})
}

// writeFile writes to a temporary file, renamed to filename on
// success.
func writeFile(filename string, fn func(fd *os.File) error) error {
	fd, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	tmp := fd.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if err = fn(fd); err != nil {
		fd.Close() //nolint:errcheck
		return fmt.Errorf("cannot write %s: %w", filename, err)
	}
	if err = fd.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
