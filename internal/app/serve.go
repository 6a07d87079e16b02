package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/configs"
	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/internal/server"
)

var serveProfile string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(
		&configs.Config.Server.Host, "host", "H",
		configs.Config.Server.Host, "server host")
	serveCmd.Flags().IntVarP(
		&configs.Config.Server.Port, "port", "p",
		configs.Config.Server.Port, "server port")
	serveCmd.Flags().StringVar(
		&serveProfile, "profile", "",
		"profile providing the default parameters")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	defaults, err := loadParams(serveProfile, nil)
	if err != nil {
		return err
	}

	q := render.NewQueue(configs.Config.Render.NumWorkers, configs.Config.Render.Debounce())
	defer q.Stop()

	s := server.New(q)
	s.Defaults = defaults

	log.WithField("url", fmt.Sprintf("http://%s:%d/",
		configs.Config.Server.Host, configs.Config.Server.Port),
	).Info("Starting server")

	return s.ListenAndServe(cmd.Context())
}
