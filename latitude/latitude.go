// Package latitude models the distribution of starspot latitudes. The
// cosine of the latitude follows a Beta distribution, with hemisphere signs
// assigned symmetrically, and the shape parameters are carried in a compact
// log encoding on [0, 1] that is convenient for inference.
package latitude

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// LogAlphaMax and LogBetaMax bound the log shape parameters; the
	// compact parameters a and b are the logs scaled to [0, 1].
	LogAlphaMax = 10.0
	LogBetaMax  = 10.0

	// SigmaMax is the largest latitude standard deviation, in degrees,
	// considered well behaved. The reparametrization Jacobian penalizes
	// wider distributions to -Inf.
	SigmaMax = 45.0

	// abMin keeps the shape parameters strictly positive.
	abMin = 1e-12

	nquad = 80
)

var ErrShapeOutOfBounds = errors.New("latitude shape parameters must be in [0, 1]")

// Distribution is the starspot latitude distribution with cos(latitude)
// distributed as Beta(Alpha, Beta).
type Distribution struct {
	Alpha float64
	Beta  float64
}

// FromShape builds the distribution from the compact shape parameters
// a, b in [0, 1].
func FromShape(a, b float64) (Distribution, error) {
	if a < 0 || a > 1 || b < 0 || b > 1 {
		return Distribution{}, fmt.Errorf("%w: a=%v, b=%v", ErrShapeOutOfBounds, a, b)
	}
	return Distribution{
		Alpha: math.Exp(a*LogAlphaMax) + abMin,
		Beta:  math.Exp(b*LogBetaMax) + abMin,
	}, nil
}

// Shape returns the compact shape parameters of the distribution.
func (d Distribution) Shape() (a, b float64) {
	return math.Log(d.Alpha) / LogAlphaMax, math.Log(d.Beta) / LogBetaMax
}

// PDF evaluates the density of the (unsigned) spot latitude phi, in
// radians, on [0, pi/2].
func (d Distribution) PDF(phi float64) float64 {
	if phi < 0 || phi > math.Pi/2 {
		return 0
	}
	beta := distuv.Beta{Alpha: d.Alpha, Beta: d.Beta}
	return beta.Prob(math.Cos(phi)) * math.Sin(phi)
}

// Sample draws n signed spot latitudes in radians.
func (d Distribution) Sample(n int, src rand.Source) []float64 {
	beta := distuv.Beta{Alpha: d.Alpha, Beta: d.Beta, Src: src}
	sign := rand.New(src)
	out := make([]float64, n)
	for i := range out {
		phi := math.Acos(beta.Rand())
		if sign.Float64() < 0.5 {
			phi = -phi
		}
		out[i] = phi
	}
	return out
}

// Quadrature returns nodes (latitudes in radians, unsigned) and weights for
// expectations under the distribution. The weights integrate the Beta
// density, so they sum to approximately one.
func (d Distribution) Quadrature(n int) (phi, w []float64) {
	x := make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	beta := distuv.Beta{Alpha: d.Alpha, Beta: d.Beta}
	phi = make([]float64, n)
	for i := range x {
		phi[i] = math.Acos(x[i])
		w[i] *= beta.Prob(x[i])
	}
	return phi, w
}

// Mode returns the mode of the unsigned latitude distribution in radians.
func (d Distribution) Mode() float64 {
	// Bracket on a coarse grid, then refine by golden section.
	const ngrid = 256
	best, bestVal := 0.0, math.Inf(-1)
	for i := 0; i <= ngrid; i++ {
		phi := math.Pi / 2 * float64(i) / ngrid
		if v := d.PDF(phi); v > bestVal {
			best, bestVal = phi, v
		}
	}
	lo := math.Max(0, best-math.Pi/2/ngrid)
	hi := math.Min(math.Pi/2, best+math.Pi/2/ngrid)
	const invPhi = 0.6180339887498949
	for it := 0; it < 60; it++ {
		m1 := hi - invPhi*(hi-lo)
		m2 := lo + invPhi*(hi-lo)
		if d.PDF(m1) > d.PDF(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return 0.5 * (lo + hi)
}

// Std returns the standard deviation of the unsigned latitude distribution
// in radians.
func (d Distribution) Std() float64 {
	phi, w := d.Quadrature(nquad)
	var m1, m2, norm float64
	for i := range phi {
		m1 += w[i] * phi[i]
		m2 += w[i] * phi[i] * phi[i]
		norm += w[i]
	}
	m1 /= norm
	m2 /= norm
	return math.Sqrt(math.Max(0, m2-m1*m1))
}
