package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/altpic/altpic/internal/render"
	"codeberg.org/altpic/altpic/pkg/effects"
	"codeberg.org/altpic/altpic/pkg/img"
)

func writePNG(t *testing.T, filename string, w, h int, c color.Color) {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	fd, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fd, m))
	require.NoError(t, fd.Close())
}

func TestApplySettings(t *testing.T) {
	p := effects.DefaultParams()
	require.NoError(t, applySettings(&p, []string{
		"tone.brightness=20",
		"dither.algo = atkinson",
		"dither.serpentine=true",
		"ascii.charset=blocks",
	}))
	assert.Equal(t, 20.0, p.Tone.Brightness)
	assert.Equal(t, effects.AlgoAtkinson, p.Dither.Algorithm)
	assert.True(t, p.Dither.Serpentine)
	assert.Equal(t, "blocks", p.ASCII.Charset)

	assert.NoError(t, applySettings(&p, nil))
	assert.Error(t, applySettings(&p, []string{"brightness"}))
	assert.Error(t, applySettings(&p, []string{"=3"}))
	assert.Error(t, applySettings(&p, []string{"nope=3"}))
	assert.Error(t, applySettings(&p, []string{"tone.contrast=abc"}))
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()

	p, err := loadParams("", []string{"tone.hue=270"})
	require.NoError(t, err)
	assert.Equal(t, -90.0, p.Tone.Hue)

	filename := filepath.Join(dir, "profile.toml")
	require.NoError(t, os.WriteFile(filename, []byte("[tone]\nsepia = 40.0\n"), 0o600))
	p, err = loadParams(filename, []string{"tone.invert=500"})
	require.NoError(t, err)
	assert.Equal(t, 40.0, p.Tone.Sepia)
	assert.Equal(t, 100.0, p.Tone.Invert)
	assert.Equal(t, 32, p.Tone.Posterize)

	_, err = loadParams(filepath.Join(dir, "nope.toml"), nil)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filename, []byte("[tone\n"), 0o600))
	_, err = loadParams(filename, nil)
	assert.ErrorContains(t, err, "profile")
}

func TestProfileInit(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "default.toml")
	require.NoError(t, initProfile(filename, false))
	assert.ErrorContains(t, initProfile(filename, false), "already exists")
	require.NoError(t, initProfile(filename, true))

	p, err := loadParams(filename, nil)
	require.NoError(t, err)
	assert.Equal(t, effects.DefaultParams(), p)
}

func TestWritePalettes(t *testing.T) {
	w := new(bytes.Buffer)
	require.NoError(t, writePalettes(w, false))
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Len(t, lines, len(effects.PaletteNames()))
	assert.Equal(t, "bw         2 colors", lines[0])

	w.Reset()
	require.NoError(t, writePalettes(w, true))
	assert.Contains(t, w.String(), "48;2;255;255;255")
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	buf := img.New(8, 16)
	for i := range buf.Pix {
		buf.Pix[i] = 255
	}

	out, err := render.Process(context.Background(), render.Job{
		Source: buf,
		Params: effects.DefaultParams(),
		ASCII:  true,
	})
	require.NoError(t, err)

	output := filepath.Join(dir, "out.png")
	text := filepath.Join(dir, "out.txt")
	asciiPNG := filepath.Join(dir, "ascii.png")
	require.NoError(t, writeOutputs(out, out.Params.ASCII, output, text, asciiPNG))

	data, err := os.ReadFile(text)
	require.NoError(t, err)
	assert.Equal(t, "@\n", string(data))

	for _, f := range []string{output, asciiPNG} {
		fd, err := os.Open(f)
		require.NoError(t, err)
		_, err = png.Decode(fd)
		fd.Close() //nolint:errcheck
		assert.NoError(t, err)
	}

	assert.Error(t, writeOutputs(out, out.Params.ASCII, filepath.Join(dir, "out.xyz"), "", ""))
	_, err = os.Stat(filepath.Join(dir, "out.xyz"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	output := filepath.Join(dir, "out.png")
	writePNG(t, input, 4, 4, color.NRGBA{R: 10, G: 100, B: 200, A: 255})

	rootCmd.SetArgs([]string{"render", input, "-o", output, "-s", "tone.invert=100"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	buf, _, err := img.Load(output, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{245, 155, 55, 255}, buf.Pix[0:4])
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o600))

	w := newWatcher(a, b)
	assert.Equal(t, []string{a}, w.changed())
	assert.Empty(t, w.changed())

	require.NoError(t, os.WriteFile(b, []byte("b"), 0o600))
	assert.Equal(t, []string{b}, w.changed())

	require.NoError(t, os.WriteFile(a, []byte("aa"), 0o600))
	assert.Equal(t, []string{a}, w.changed())
}

func TestPollChanges(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.WriteFile(filename, []byte("a"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	err := pollChanges(ctx, newWatcher(filename), 5*time.Millisecond, func(files []string) {
		calls++
		assert.Equal(t, []string{filename}, files)
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
