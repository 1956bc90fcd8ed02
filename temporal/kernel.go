// Package temporal provides the covariance kernels used to model the time
// evolution of stellar surfaces.
package temporal

import (
	"gonum.org/v1/gonum/mat"
)

// Kernel computes the covariance of the surface evolution process.
type Kernel interface {
	// Covariance matrix between two sets of times for the timescale tau,
	// with shape (len(t1), len(t2)).
	Cov(t1, t2 []float64, tau float64) *mat.Dense
}

// eval fills a covariance matrix from a stationary correlation function of
// the absolute time lag scaled by tau.
func eval(t1, t2 []float64, tau float64, corr func(r float64) float64) *mat.Dense {
	out := mat.NewDense(len(t1), len(t2), nil)
	for i, a := range t1 {
		for j, b := range t2 {
			r := (a - b) / tau
			if r < 0 {
				r = -r
			}
			out.Set(i, j, corr(r))
		}
	}
	return out
}
