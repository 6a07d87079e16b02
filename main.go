package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.WithError(err).Error()
		os.Exit(1)
	}
}
