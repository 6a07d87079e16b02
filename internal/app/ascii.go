package app

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/ascii"
	"codeberg.org/altpic/altpic/pkg/effects"
)

type asciiFlags struct {
	profile  string
	color    bool
	mono     bool
	cellSize int
	charset  string
	edges    bool
	effects  bool
	maxSize  int
	settings []string
}

var asciiOpts asciiFlags

func init() {
	rootCmd.AddCommand(asciiCmd)

	f := asciiCmd.Flags()
	f.StringVarP(&asciiOpts.profile, "profile", "p", "", "render profile (TOML)")
	f.BoolVar(&asciiOpts.color, "color", false, "colorize the output with the image colors")
	f.BoolVar(&asciiOpts.mono, "mono", false, "use the profile's ASCII color")
	f.IntVar(&asciiOpts.cellSize, "cell", 0, "cell size in pixels")
	f.StringVar(&asciiOpts.charset, "charset", "", "character set (simple, detailed, blocks, braille)")
	f.BoolVar(&asciiOpts.edges, "edges", false, "draw edges with line characters")
	f.BoolVar(&asciiOpts.effects, "effects", false, "apply the profile's effects before the conversion")
	f.IntVar(&asciiOpts.maxSize, "max-size", 0, "fit the source image in a square of this size")
	f.StringArrayVarP(&asciiOpts.settings, "set", "s", nil, "set a parameter (ie. ascii.cellSize=4)")
}

var asciiCmd = &cobra.Command{
	Use:   "ascii <input>",
	Short: "Print an image as ASCII art",
	Args:  cobra.ExactArgs(1),
	RunE:  runASCII,
}

func runASCII(cmd *cobra.Command, args []string) error {
	p, err := loadParams(asciiOpts.profile, asciiOpts.settings)
	if err != nil {
		return err
	}
	if !asciiOpts.effects {
		ap := p.ASCII
		p = effects.DefaultParams()
		p.ASCII = ap
	}

	if asciiOpts.cellSize > 0 {
		p.ASCII.CellSize = asciiOpts.cellSize
	}
	if asciiOpts.charset != "" {
		p.ASCII.Charset = asciiOpts.charset
	}
	if asciiOpts.edges {
		p.ASCII.Edges = true
	}
	switch {
	case asciiOpts.color:
		p.ASCII.ColorMode = ascii.ColorModeColor
	case asciiOpts.mono:
		p.ASCII.ColorMode = ascii.ColorModeMono
	}
	p.ASCII.Overlay = false
	p.Normalize()

	src, err := loadSource(args[0], asciiOpts.maxSize)
	if err != nil {
		return err
	}

	out, err := render.Process(cmd.Context(), render.Job{
		Source: src,
		Params: p,
		ASCII:  true,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !asciiOpts.color && !asciiOpts.mono {
		return ascii.WriteText(w, out.ASCII)
	}
	if w == os.Stdout {
		w = colorable.NewColorableStdout()
	}
	return ascii.WriteANSI(w, out.ASCII, p.ASCII)
}
