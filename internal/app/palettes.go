package app

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/pkg/effects"
)

var paletteSwatches bool

func init() {
	rootCmd.AddCommand(palettesCmd)
	palettesCmd.Flags().BoolVar(&paletteSwatches, "swatches", false, "print color swatches")
}

var palettesCmd = &cobra.Command{
	Use:   "palettes",
	Short: "List the palette presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		if w == os.Stdout {
			w = colorable.NewColorableStdout()
		}
		return writePalettes(w, paletteSwatches)
	},
}

func writePalettes(w io.Writer, swatches bool) error {
	for _, name := range effects.PaletteNames() {
		p, _ := effects.Preset(name)
		if _, err := fmt.Fprintf(w, "%-8s %3d colors", name, len(p)); err != nil {
			return err
		}
		if swatches {
			fmt.Fprint(w, " ") //nolint:errcheck
			for _, c := range p {
				sw := color.BgRGB(int(c.R), int(c.G), int(c.B))
				sw.EnableColor()
				sw.Fprint(w, "  ") //nolint:errcheck
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
