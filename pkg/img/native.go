package img

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"image/gif"  // GIF decoder and encoder
	"image/jpeg" // JPEG decoder and encoder
	"image/png"  // PNG decoder and encoder

	_ "github.com/biessek/golang-ico" // ICO decoder
	_ "golang.org/x/image/bmp"        // BMP decoder
	_ "golang.org/x/image/tiff"       // TIFF decoder
	_ "golang.org/x/image/webp"       // WEBP decoder

	"github.com/anthonynsimon/bild/transform"
)

// ImageCompression is the PNG compression level.
type ImageCompression uint8

const (
	// CompressionFast uses png.BestSpeed.
	CompressionFast ImageCompression = iota
	// CompressionBest uses png.BestCompression.
	CompressionBest
)

// Decode reads an image from r and returns a new Buffer with its
// format name.
func Decode(r io.Reader) (*Buffer, string, error) {
	// We need to grab the format and size first, hence this two pass thing
	var b bytes.Buffer
	tee := io.TeeReader(r, &b)
	c, format, err := image.DecodeConfig(tee)
	if err != nil {
		return nil, "", err
	}

	if c.Width*c.Height > MaxPixels {
		return nil, "", ErrTooBig
	}

	m, _, err := image.Decode(io.MultiReader(&b, r))
	if err != nil {
		return nil, "", err
	}

	return FromImage(m), format, nil
}

// EncodeOptions holds the encoding parameters.
type EncodeOptions struct {
	Format      string
	Quality     uint8
	Compression ImageCompression
}

// Encode writes the buffer to w in the given format. It defaults to PNG.
func (b *Buffer) Encode(w io.Writer, opts EncodeOptions) (string, error) {
	m := b.Image()

	switch opts.Format {
	case "jpeg", "jpg":
		q := int(opts.Quality)
		if q == 0 {
			q = 90
		}
		return "jpeg", jpeg.Encode(w, m, &jpeg.Options{Quality: q})
	case "gif":
		return "gif", gif.Encode(w, m, &gif.Options{NumColors: 256})
	case "", "png":
		c := png.BestSpeed
		if opts.Compression == CompressionBest {
			c = png.BestCompression
		}
		encoder := &png.Encoder{CompressionLevel: c}
		return "png", encoder.Encode(w, m)
	}

	return "", fmt.Errorf("unsupported format %q", opts.Format)
}

// Fit returns a resized copy of the buffer, keeping the aspect ratio
// and staying within the given width and height. The buffer itself is
// returned when it already fits.
func (b *Buffer) Fit(w, h int) *Buffer {
	if w <= 0 || h <= 0 || (b.Width <= w && b.Height <= h) || b.Empty() {
		return b
	}

	srcAspectRatio := float64(b.Width) / float64(b.Height)
	maxAspectRatio := float64(w) / float64(h)

	var nw, nh int
	if srcAspectRatio > maxAspectRatio {
		nw = w
		nh = int(float64(nw) / srcAspectRatio)
	} else {
		nh = h
		nw = int(float64(nh) * srcAspectRatio)
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	return FromImage(transform.Resize(b.Image(), nw, nh, transform.Box))
}
