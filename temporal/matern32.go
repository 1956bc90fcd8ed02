package temporal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	matern32 *Matern32
	_        Kernel = matern32 // Check that Matern32 respects the Kernel interface.
)

// Matern32 is the Matern-3/2 kernel, the default surface evolution kernel.
type Matern32 struct{}

func NewMatern32() *Matern32 {
	return &Matern32{}
}

func (k *Matern32) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	return eval(t1, t2, tau, func(r float64) float64 {
		z := math.Sqrt(3) * r
		return (1 + z) * math.Exp(-z)
	})
}
