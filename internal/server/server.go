package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/configs"
	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/effects"
)

// Server is a wrapper around chi router.
type Server struct {
	Router *chi.Mux
	Queue  *render.Queue

	// Defaults are the parameters the query string applies to.
	Defaults effects.Params

	// MaxUpload is the maximum size of a request body.
	MaxUpload int64
}

// New creates a new server with all its routes. Render passes run
// on the given queue.
func New(queue *render.Queue) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		Queue:     queue,
		Defaults:  effects.DefaultParams(),
		MaxUpload: configs.Config.Server.MaxUploadBytes(),
	}

	s.Router.Use(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.RequestID,
		Logger(),
	)

	s.Router.Post("/render", s.renderImage)
	s.Router.Get("/palettes", s.listPalettes)
	s.Router.Get("/charsets", s.listCharsets)
	s.Router.Get("/params/defaults", s.defaultParams)

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.TextMessage(w, r, http.StatusNotFound, "Not Found")
	})
	s.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.TextMessage(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return s
}

// ListenAndServe starts the HTTP server and shuts it down when ctx
// is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", configs.Config.Server.Host, configs.Config.Server.Port),
		Handler:           s.Router,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Add the profiler in dev mode
	if configs.Config.Main.DevMode {
		s.Router.Mount("/debug", middleware.Profiler())
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// Log returns a log entry including the request ID
func (s *Server) Log(r *http.Request) *log.Entry {
	return log.WithField("@id", s.GetReqID(r))
}

// GetReqID returns the request ID.
func (s *Server) GetReqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
