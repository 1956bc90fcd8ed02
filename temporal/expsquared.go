package temporal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	expSquared *ExpSquared
	cosine     *Cosine
	_          Kernel = expSquared // Check that ExpSquared respects the Kernel interface.
	_          Kernel = cosine     // Check that Cosine respects the Kernel interface.
)

// ExpSquared is the squared-exponential kernel.
type ExpSquared struct{}

func NewExpSquared() *ExpSquared {
	return &ExpSquared{}
}

func (k *ExpSquared) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	return eval(t1, t2, tau, func(r float64) float64 {
		return math.Exp(-0.5 * r * r)
	})
}

// Cosine is a periodic kernel with period tau. On its own it is only
// positive semi-definite; it is typically multiplied with one of the decaying
// kernels.
type Cosine struct{}

func NewCosine() *Cosine {
	return &Cosine{}
}

func (k *Cosine) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	return eval(t1, t2, tau, func(r float64) float64 {
		return math.Cos(2 * math.Pi * r)
	})
}
