package ascii

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"codeberg.org/altpic/altpic/pkg/img"
)

// sobel returns the gradient magnitude of the buffer's luminance for
// every pixel. The outer border is left at zero.
func sobel(buf *img.Buffer) []float32 {
	w, h := buf.Width, buf.Height
	gray := make([]float32, w*h)
	for i := range gray {
		p := buf.Pix[i*4 : i*4+3]
		gray[i] = float32(img.Luminance(float64(p[0]), float64(p[1]), float64(p[2])))
	}

	edges := make([]float32, w*h)
	if w < 3 || h < 3 {
		return edges
	}

	parallel.Line(h-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			up, mid, down := (y-1)*w, y*w, (y+1)*w
			for x := 1; x < w-1; x++ {
				gx := -gray[up+x-1] + gray[up+x+1] +
					-2*gray[mid+x-1] + 2*gray[mid+x+1] +
					-gray[down+x-1] + gray[down+x+1]
				gy := -gray[up+x-1] - 2*gray[up+x] - gray[up+x+1] +
					gray[down+x-1] + 2*gray[down+x] + gray[down+x+1]
				edges[mid+x] = float32(math.Sqrt(float64(gx*gx + gy*gy)))
			}
		}
	})

	return edges
}
