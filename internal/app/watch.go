package app

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeberg.org/altpic/altpic/configs"
	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/img"
)

const watchKey = "watch"

type watchFlags struct {
	profile  string
	output   string
	text     string
	maxSize  int
	interval time.Duration
}

var watchOpts watchFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	f := watchCmd.Flags()
	f.StringVarP(&watchOpts.profile, "profile", "p", "", "render profile (TOML)")
	f.StringVarP(&watchOpts.output, "output", "o", "out.png", "output image")
	f.StringVar(&watchOpts.text, "txt", "", "also write the ASCII text to this file")
	f.IntVar(&watchOpts.maxSize, "max-size", 0, "fit the source image in a square of this size")
	f.DurationVar(&watchOpts.interval, "interval", 200*time.Millisecond, "polling interval")

	watchCmd.MarkFlagRequired("profile") //nolint:errcheck
}

var watchCmd = &cobra.Command{
	Use:   "watch <input>",
	Short: "Render the image again every time the profile or the image changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

// watcher polls files and reports when their modification time or
// size changed.
type watcher struct {
	files map[string]fileState
}

type fileState struct {
	mtime time.Time
	size  int64
}

func newWatcher(files ...string) *watcher {
	w := &watcher{files: map[string]fileState{}}
	for _, f := range files {
		w.files[f] = fileState{}
	}
	return w
}

// changed returns the files that changed since the last call.
func (w *watcher) changed() []string {
	res := []string{}
	for name, prev := range w.files {
		st, err := os.Stat(name)
		if err != nil {
			continue
		}
		cur := fileState{st.ModTime(), st.Size()}
		if cur != prev {
			w.files[name] = cur
			res = append(res, name)
		}
	}
	return res
}

func runWatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	q := render.NewQueue(1, configs.Config.Render.Debounce())
	defer q.Stop()

	var src *img.Buffer
	handler := func(_ string, out render.Output, err error) {
		if err != nil {
			log.WithError(err).Error("render failed")
			return
		}
		if err := writeOutputs(out, out.Params.ASCII, watchOpts.output, watchOpts.text, ""); err != nil {
			log.WithError(err).Error("cannot write output")
			return
		}
		log.WithFields(log.Fields{
			"output":  watchOpts.output,
			"elapsed": out.Elapsed,
		}).Info("image rendered")
	}

	w := newWatcher(input, watchOpts.profile)
	return pollChanges(cmd.Context(), w, watchOpts.interval, func(files []string) {
		for _, f := range files {
			if f != input {
				continue
			}
			buf, err := loadSource(input, watchOpts.maxSize)
			if err != nil {
				log.WithError(err).Error("cannot load image")
				return
			}
			src = buf
		}
		if src == nil {
			return
		}

		p, err := loadParams(watchOpts.profile, nil)
		if err != nil {
			log.WithError(err).Error("cannot load profile")
			return
		}

		log.WithField("files", files).Debug("change detected")
		q.Schedule(watchKey, render.Job{
			Source: src,
			Params: p,
			ASCII:  watchOpts.text != "",
		}, handler)
	})
}

// pollChanges calls fn with the changed files at every interval, until
// ctx is done. The first call happens right away.
func pollChanges(ctx context.Context, w *watcher, interval time.Duration, fn func([]string)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if files := w.changed(); len(files) > 0 {
			fn(files)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
