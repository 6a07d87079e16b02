package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/schema"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/configs"
	"codeberg.org/altpic/altpic/pkg/effects"
)

var rootCmd = &cobra.Command{
	Use:               "altpic",
	Short:             "Photographic effects, dithering and ASCII art",
	SilenceUsage:      true,
	PersistentPreRunE: appPersistentPreRun,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c",
		"", "Configuration file",
	)
	rootCmd.PersistentFlags().StringVarP(
		&configs.Config.Main.LogLevel, "level", "l",
		configs.Config.Main.LogLevel, "Log level",
	)
}

func appPersistentPreRun(_ *cobra.Command, _ []string) error {
	if configPath != "" {
		if err := createConfigFile(configPath); err != nil {
			return err
		}
		if err := configs.LoadConfiguration(configPath); err != nil {
			return fmt.Errorf("error loading configuration (%s)", err)
		}
	}

	// Enforce debug in dev mode
	if configs.Config.Main.DevMode {
		configs.Config.Main.LogLevel = "debug"
	}

	// Setup logger
	lvl, err := log.ParseLevel(configs.Config.Main.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(colorable.NewColorableStderr())
	if configs.Config.Main.DevMode {
		log.SetFormatter(&log.TextFormatter{
			ForceColors: true,
		})
		log.SetLevel(log.TraceLevel)
	}
	log.WithField("log_level", lvl).Debug()

	return nil
}

// createConfigFile writes the default configuration when the file
// does not exist yet.
func createConfigFile(filename string) error {
	_, err := os.Stat(filename)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	log.WithField("path", filename).Info("creating configuration file")
	return configs.WriteConfig(filename)
}

var paramDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// loadParams returns the render parameters of a profile file, or the
// configured default profile when filename is empty, then applies
// the "key=value" settings on top of them.
func loadParams(filename string, settings []string) (effects.Params, error) {
	if filename == "" {
		filename = configs.Config.Render.DefaultProfile
	}

	p := effects.DefaultParams()
	if filename != "" {
		fd, err := os.Open(filename)
		if err != nil {
			return p, err
		}
		defer fd.Close() //nolint:errcheck

		if p, err = effects.LoadParams(fd); err != nil {
			return p, fmt.Errorf("profile %s: %w", filename, err)
		}
	}

	if err := applySettings(&p, settings); err != nil {
		return p, err
	}
	p.Normalize()
	return p, nil
}

// applySettings sets parameters from "key=value" strings, using the
// same names as the HTTP query string (ie. "tone.brightness=20").
func applySettings(p *effects.Params, settings []string) error {
	if len(settings) == 0 {
		return nil
	}

	values := url.Values{}
	for _, s := range settings {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid setting %q (expected key=value)", s)
		}
		values.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	return paramDecoder.Decode(p, values)
}

// Run starts the application. The commands' context is canceled on
// interrupt.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP,
	)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
