package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/ascii"
	"codeberg.org/altpic/altpic/pkg/effects"
	"codeberg.org/altpic/altpic/pkg/img"
)

// Output formats of the render endpoint.
const (
	FormatPNG      = "png"
	FormatText     = "txt"
	FormatANSI     = "ansi"
	FormatJSON     = "json"
	FormatASCIIPNG = "asciipng"
)

// renderRequest is the envelope of a render request. The effect
// parameters are bound separately and are never rejected.
type renderRequest struct {
	Format  string `schema:"format" json:"format"`
	Seed    int64  `schema:"seed" json:"seed"`
	MaxSize int    `schema:"maxSize" json:"maxSize"`
	Image   []byte `schema:"-" json:"image"`
}

func (rr *renderRequest) Validate() error {
	return validation.ValidateStruct(rr,
		validation.Field(&rr.Format,
			validation.Required,
			validation.In(FormatPNG, FormatText, FormatANSI, FormatJSON, FormatASCIIPNG),
		),
		validation.Field(&rr.MaxSize, validation.Min(0)),
		validation.Field(&rr.Image, validation.Required.Error("an image upload is required")),
	)
}

func (rr *renderRequest) needsASCII() bool {
	return rr.Format != FormatPNG
}

type paletteInfo struct {
	Name   string      `json:"name"`
	Colors []img.Color `json:"colors"`
}

// readUpload returns the content of the "image" multipart field, or
// nil when there is none.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, *Message) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	if err := r.ParseMultipartForm(s.MaxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &Message{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("upload exceeds %d bytes", s.MaxUpload),
			}
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, &Message{Status: http.StatusBadRequest, Message: err.Error()}
	}

	fd, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &Message{Status: http.StatusBadRequest, Message: err.Error()}
	}
	defer fd.Close() //nolint:errcheck

	data, err := io.ReadAll(fd)
	if err != nil {
		return nil, &Message{Status: http.StatusBadRequest, Message: err.Error()}
	}
	return data, nil
}

// renderImage decodes the uploaded image, runs the effects given in
// the query string and sends the result in the requested format.
func (s *Server) renderImage(w http.ResponseWriter, r *http.Request) {
	data, msg := s.readUpload(w, r)
	if msg != nil {
		s.Message(w, r, msg)
		return
	}

	req := &renderRequest{Format: FormatPNG, Image: data}
	if msg := s.BindQueryString(r, req); msg != nil {
		s.Message(w, r, msg)
		return
	}

	params := s.Defaults
	if msg := s.BindQueryString(r, &params); msg != nil {
		s.Message(w, r, msg)
		return
	}
	params.Normalize()

	src, format, err := img.Decode(bytes.NewReader(req.Image))
	switch {
	case errors.Is(err, img.ErrTooBig):
		s.TextMessage(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		s.TextMessage(w, r, http.StatusBadRequest, fmt.Sprintf("cannot decode image: %s", err))
		return
	}
	if req.MaxSize > 0 {
		src = src.Fit(req.MaxSize, req.MaxSize)
	}

	s.Log(r).WithField("format", format).Debug("render request")

	out, err := s.Queue.Do(r.Context(), render.Job{
		Source: src,
		Params: params,
		ASCII:  req.needsASCII(),
		Seed:   req.Seed,
	})
	if err != nil {
		s.Error(w, r, err)
		return
	}

	w.Header().Set("X-Render-Time", out.Elapsed.String())

	switch req.Format {
	case FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ascii.WriteText(w, out.ASCII) //nolint:errcheck
	case FormatANSI:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ascii.WriteANSI(w, out.ASCII, params.ASCII) //nolint:errcheck
	case FormatJSON:
		s.Render(w, r, http.StatusOK, out.ASCII)
	case FormatASCIIPNG:
		m, err := ascii.RenderImage(out.ASCII, params.ASCII)
		if err != nil {
			s.Error(w, r, err)
			return
		}
		s.sendPNG(w, r, img.FromImage(m))
	default:
		s.sendPNG(w, r, out.Buffer)
	}
}

func (s *Server) sendPNG(w http.ResponseWriter, r *http.Request, buf *img.Buffer) {
	b := new(bytes.Buffer)
	if _, err := buf.Encode(b, img.EncodeOptions{Format: "png"}); err != nil {
		s.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(b.Bytes()) //nolint:errcheck
}

func (s *Server) listPalettes(w http.ResponseWriter, r *http.Request) {
	res := []paletteInfo{}
	for _, name := range effects.PaletteNames() {
		p, _ := effects.Preset(name)
		res = append(res, paletteInfo{Name: name, Colors: p})
	}
	s.Render(w, r, http.StatusOK, res)
}

func (s *Server) listCharsets(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{}
	for _, name := range ascii.CharsetNames() {
		res[name] = ascii.Charsets[name]
	}
	s.Render(w, r, http.StatusOK, res)
}

func (s *Server) defaultParams(w http.ResponseWriter, r *http.Request) {
	s.Render(w, r, http.StatusOK, s.Defaults)
}
