package effects

import "math/bits"

// BayerMatrix is a square ordered dither threshold matrix.
type BayerMatrix [][]int

// bayerQuadrant holds the offset added to each quadrant, indexed
// by (y >= n/2)*2 + (x >= n/2).
var bayerQuadrant = [4]int{0, 2, 3, 1}

// MakeBayerMatrix builds an n×n Bayer matrix by recursive doubling.
// Sizes that are not a power of two are rounded down to one.
func MakeBayerMatrix(n int) BayerMatrix {
	if n <= 1 {
		return BayerMatrix{{0}}
	}
	n = 1 << (bits.Len(uint(n)) - 1)
	half := n / 2
	prev := MakeBayerMatrix(half)

	m := make(BayerMatrix, n)
	for y := range m {
		m[y] = make([]int, n)
		for x := range m[y] {
			q := 0
			if y >= half {
				q += 2
			}
			if x >= half {
				q++
			}
			m[y][x] = prev[y%half][x%half]*4 + bayerQuadrant[q]
		}
	}
	return m
}

// Size returns the matrix width.
func (m BayerMatrix) Size() int {
	return len(m)
}

var bayerMatrices = map[int]BayerMatrix{
	4:  MakeBayerMatrix(4),
	8:  MakeBayerMatrix(8),
	16: MakeBayerMatrix(16),
}

// bayerMatrix returns a precomputed matrix; any size other than 8 or
// 16 yields the 4×4 one.
func bayerMatrix(size int) BayerMatrix {
	if m, ok := bayerMatrices[size]; ok {
		return m
	}
	return bayerMatrices[4]
}
