package img

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrSizeMismatch is returned when a pixel plane does not hold
	// exactly width*height*4 bytes.
	ErrSizeMismatch = errors.New("pixel data does not match buffer size")

	// ErrTooBig is returned when a decoded image exceeds MaxPixels.
	ErrTooBig = errors.New("image is too big")
)

// MaxPixels is the largest image (width*height) the decoder accepts.
const MaxPixels = 30000000

// Buffer is an RGBA8 pixel plane, not premultiplied, in R,G,B,A order.
// len(Pix) is always Width*Height*4.
//
// A Buffer is owned by whoever is currently transforming it; it is not
// safe for concurrent use.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a new, fully transparent, Buffer.
func New(w, h int) *Buffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Buffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}
}

// FromRGBA wraps an existing RGBA plane. The slice is not copied.
func FromRGBA(w, h int, pix []uint8) (*Buffer, error) {
	if w < 0 || h < 0 || len(pix) != w*h*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrSizeMismatch, w, h, len(pix))
	}
	return &Buffer{Width: w, Height: h, Pix: pix}, nil
}

// FromImage converts any image.Image to a new Buffer.
func FromImage(m image.Image) *Buffer {
	b := m.Bounds()
	if n, ok := m.(*image.NRGBA); ok && n.Stride == b.Dx()*4 {
		buf := New(b.Dx(), b.Dy())
		copy(buf.Pix, n.Pix[n.PixOffset(b.Min.X, b.Min.Y):])
		return buf
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return &Buffer{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// Image returns an *image.NRGBA sharing the buffer's pixels.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Offset returns the index of the pixel (x, y) in Pix.
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// Empty returns true when the buffer holds no pixel.
func (b *Buffer) Empty() bool {
	return b.Width == 0 || b.Height == 0
}

// CopyRGB copies the red, green and blue channels of src into b.
// Both buffers must have the same size; the alpha channel of b is
// left untouched.
func (b *Buffer) CopyRGB(src *Buffer) error {
	if src.Width != b.Width || src.Height != b.Height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch,
			src.Width, src.Height, b.Width, b.Height)
	}
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i] = src.Pix[i]
		b.Pix[i+1] = src.Pix[i+1]
		b.Pix[i+2] = src.Pix[i+2]
	}
	return nil
}

// CopyRGBFrom copies the RGB channels of any image of the same size
// into the buffer, leaving alpha untouched. The source is read
// through its color model, so premultiplied sources are supported
// as long as they are opaque.
func (b *Buffer) CopyRGBFrom(m image.Image) error {
	r := m.Bounds()
	if r.Dx() != b.Width || r.Dy() != b.Height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch,
			r.Dx(), r.Dy(), b.Width, b.Height)
	}

	if rgba, ok := m.(*image.RGBA); ok {
		for y := 0; y < b.Height; y++ {
			si := rgba.PixOffset(r.Min.X, r.Min.Y+y)
			di := b.Offset(0, y)
			for x := 0; x < b.Width; x++ {
				b.Pix[di] = rgba.Pix[si]
				b.Pix[di+1] = rgba.Pix[si+1]
				b.Pix[di+2] = rgba.Pix[si+2]
				si += 4
				di += 4
			}
		}
		return nil
	}

	return b.CopyRGB(FromImage(m))
}

// Opaque returns a copy of the buffer as an *image.RGBA where every
// pixel is fully opaque.
func (b *Buffer) Opaque() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(dst.Pix, b.Pix)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}

// Composite draws layer over the buffer's colors with the "over"
// operator. The buffer's alpha channel is left untouched.
func (b *Buffer) Composite(layer image.Image) error {
	dst := b.Opaque()
	draw.Draw(dst, dst.Bounds(), layer, layer.Bounds().Min, draw.Over)
	return b.CopyRGBFrom(dst)
}
