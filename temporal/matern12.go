package temporal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	matern12 *Matern12
	_        Kernel = matern12 // Check that Matern12 respects the Kernel interface.
)

// Matern12 is the exponential (Matern-1/2) kernel.
type Matern12 struct{}

func NewMatern12() *Matern12 {
	return &Matern12{}
}

func (k *Matern12) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	return eval(t1, t2, tau, func(r float64) float64 {
		return math.Exp(-r)
	})
}
