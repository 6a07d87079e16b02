package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/effects"
)

func newTestServer(t *testing.T) *Server {
	q := render.NewQueue(1, 0)
	t.Cleanup(q.Stop)
	return New(q)
}

func pngData(t *testing.T, w, h int, c color.Color) []byte {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, m))
	return b.Bytes()
}

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	if data != nil {
		fw, err := mw.CreateFormFile("image", "image.png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func serve(s *Server, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, r)
	return w
}

func readMessage(t *testing.T, w *httptest.ResponseRecorder) Message {
	var m Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestRenderPNG(t *testing.T) {
	s := newTestServer(t)
	data := pngData(t, 4, 4, color.NRGBA{R: 10, G: 100, B: 200, A: 255})

	t.Run("identity", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render", data))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Header().Get("X-Render-Time"))

		m, err := png.Decode(w.Body)
		require.NoError(t, err)
		r, g, b, _ := m.At(1, 1).RGBA()
		assert.Equal(t, []uint32{10, 100, 200}, []uint32{r >> 8, g >> 8, b >> 8})
	})

	t.Run("invert", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?tone.invert=100", data))
		require.Equal(t, http.StatusOK, w.Code)

		m, err := png.Decode(w.Body)
		require.NoError(t, err)
		r, g, b, _ := m.At(0, 0).RGBA()
		assert.Equal(t, []uint32{245, 155, 55}, []uint32{r >> 8, g >> 8, b >> 8})
	})

	t.Run("out of range values are clamped", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?tone.invert=900&dither.algo=nope", data))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("max size", func(t *testing.T) {
		big := pngData(t, 40, 20, color.White)
		w := serve(s, uploadRequest(t, "/render?maxSize=10", big))
		require.Equal(t, http.StatusOK, w.Code)

		m, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(10, 5), m.Bounds().Size())
	})
}

func TestRenderASCII(t *testing.T) {
	s := newTestServer(t)
	data := pngData(t, 8, 16, color.White)

	t.Run("text", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=txt", data))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "@\n", w.Body.String())
	})

	t.Run("custom charset", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=txt&ascii.charset=custom&ascii.customChars=ab", data))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "b\n", w.Body.String())
	})

	t.Run("ansi", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=ansi&ascii.colorMode=color", data))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "38;2;255;255;255")
	})

	t.Run("json", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=json", data))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"text":"@","lines":["@"],"colors":[["#ffffff"]],"cols":1,"rows":1}`,
			w.Body.String())
	})

	t.Run("image", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=asciipng", data))
		require.Equal(t, http.StatusOK, w.Code)
		m, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 26, m.Bounds().Dy())
	})
}

func TestRenderErrors(t *testing.T) {
	s := newTestServer(t)
	data := pngData(t, 4, 4, color.White)

	t.Run("no upload", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render", nil))
		require.Equal(t, http.StatusBadRequest, w.Code)
		m := readMessage(t, w)
		require.Len(t, m.Errors, 1)
		assert.Equal(t, "image", m.Errors[0].Location)
	})

	t.Run("not multipart", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("abc"))
		w := serve(s, r)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "image", readMessage(t, w).Errors[0].Location)
	})

	t.Run("format", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?format=bmp&maxSize=-1", data))
		require.Equal(t, http.StatusBadRequest, w.Code)
		m := readMessage(t, w)
		assert.Equal(t, "Invalid input data", m.Message)
		require.Len(t, m.Errors, 2)
		assert.Equal(t, "format", m.Errors[0].Location)
		assert.Equal(t, "maxSize", m.Errors[1].Location)
	})

	t.Run("query", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render?tone.brightness=abc", data))
		require.Equal(t, http.StatusBadRequest, w.Code)
		m := readMessage(t, w)
		assert.Equal(t, "Invalid query string", m.Message)
		require.Len(t, m.Errors, 1)
		assert.Equal(t, "tone.brightness", m.Errors[0].Location)
	})

	t.Run("not an image", func(t *testing.T) {
		w := serve(s, uploadRequest(t, "/render", []byte("not an image")))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, readMessage(t, w).Message, "cannot decode image")
	})

	t.Run("too large", func(t *testing.T) {
		s := newTestServer(t)
		s.MaxUpload = 16
		w := serve(s, uploadRequest(t, "/render", data))
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestInfoRoutes(t *testing.T) {
	s := newTestServer(t)

	t.Run("palettes", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/palettes", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var res []struct {
			Name   string   `json:"name"`
			Colors []string `json:"colors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res, len(effects.PaletteNames()))
		assert.Equal(t, "bw", res[0].Name)
		assert.Equal(t, []string{"#000000", "#ffffff"}, res[0].Colors)
	})

	t.Run("charsets", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/charsets", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var res map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, " .:-=+*#%@", res["simple"])
	})

	t.Run("defaults", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/params/defaults", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var p effects.Params
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, effects.DefaultParams(), p)
	})

	t.Run("not found", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not Found", readMessage(t, w).Message)

		w = serve(s, httptest.NewRequest(http.MethodGet, "/render", nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
