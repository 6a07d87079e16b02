package app

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/pkg/effects"
)

var profileForce bool

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileInitCmd, profileShowCmd)

	profileInitCmd.Flags().BoolVarP(&profileForce, "force", "f", false, "overwrite an existing file")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage render profiles",
}

var profileInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write a profile with the default parameters",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return initProfile(args[0], profileForce)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the normalized parameters of a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := ""
		if len(args) > 0 {
			filename = args[0]
		}
		p, err := loadParams(filename, nil)
		if err != nil {
			return err
		}
		return effects.WriteParams(cmd.OutOrStdout(), p)
	},
}

func initProfile(filename string, force bool) error {
	if _, err := os.Stat(filename); err == nil && !force {
		return fmt.Errorf("%s already exists", filename)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := writeFile(filename, func(fd *os.File) error {
		return effects.WriteParams(fd, effects.DefaultParams())
	}); err != nil {
		return err
	}

	log.WithField("path", filename).Info("profile created")
	return nil
}
