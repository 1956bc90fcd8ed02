package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Identity matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// Make a block diagonal matrix.
func BlockDiag(size int, mats ...mat.Matrix) *mat.Dense {
	out := mat.NewDense(size, size, nil)
	offset := 0
	var r int
	var slice mat.Matrix
	for _, matrix := range mats {
		slice = out.Slice(offset, size, offset, size)
		slice.(*mat.Dense).Copy(matrix)
		r, _ = matrix.Dims()
		offset += r
	}
	return out
}

// Standard normal density.
func NormalPdf(z float64) float64 {
	return math.Exp(-0.5*z*z) / (math.Sqrt2 * math.SqrtPi)
}

// Standard normal cumulative distribution function.
func NormalCdf(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
