// Package flux maps spherical harmonic surface maps to disk-integrated
// relative flux, and computes the flux moments of the starspot process,
// optionally marginalized over the stellar inclination.
package flux

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/ylm"
)

// Basis holds the quadrature over the visible disk used to evaluate the
// flux operator. Nodes are fixed in the observer frame; the dependence on
// rotational phase reduces to an axis rotation of the coefficient vector,
// so a design matrix costs one basis evaluation per inclination, not per
// time sample.
type Basis struct {
	lmax int
	x    []float64 // node position, observer frame
	y    []float64
	z    []float64 // toward the observer; the limb darkening parameter
	w    []float64 // quadrature weight, area element included
}

// NewBasis builds the disk quadrature for expansions up to degree lmax.
func NewBasis(lmax int) *Basis {
	nr := lmax + 5
	npsi := 4 * lmax
	if npsi < 32 {
		npsi = 32
	}

	// Gauss-Legendre in s = r^2 so the area element is uniform; uniform
	// (trapezoidal) nodes in azimuth, exact for trigonometric polynomials.
	s := make([]float64, nr)
	ws := make([]float64, nr)
	quad.Legendre{}.FixedLocations(s, ws, 0, 1)

	b := &Basis{lmax: lmax}
	for j := 0; j < nr; j++ {
		r := math.Sqrt(s[j])
		z := math.Sqrt(1 - s[j])
		for k := 0; k < npsi; k++ {
			psi := 2 * math.Pi * float64(k) / float64(npsi)
			b.x = append(b.x, r*math.Cos(psi))
			b.y = append(b.y, r*math.Sin(psi))
			b.z = append(b.z, z)
			b.w = append(b.w, ws[j]*0.5*2*math.Pi/float64(npsi))
		}
	}
	return b
}

// limbDarkening evaluates the intensity profile 1 - sum_k u_k (1-z)^k.
func limbDarkening(u []float64, z float64) float64 {
	v := 1.0
	omz := 1 - z
	pow := 1.0
	for _, uk := range u {
		pow *= omz
		v -= uk * pow
	}
	return v
}

// Weights returns the flux operator at rotational phase zero for a star
// inclined by inc radians, normalized so that a uniform map of unit
// intensity has unit flux. The operator at phase alpha is the axis rotation
// ylm.RotateZ(lmax, alpha, s, row) of the returned vector.
func (b *Basis) Weights(inc float64, u []float64) []float64 {
	n := ylm.Num(b.lmax)
	s := make([]float64, n)
	row := make([]float64, n)
	si, ci := math.Sincos(inc)
	var norm float64
	for j := range b.w {
		// Rotate the node into the frame aligned with the spin axis.
		py := ci*b.y[j] - si*b.z[j]
		pz := si*b.y[j] + ci*b.z[j]
		theta := math.Acos(math.Max(-1, math.Min(1, pz)))
		phi := math.Atan2(py, b.x[j])

		wj := b.w[j] * limbDarkening(u, b.z[j])
		norm += wj
		ylm.Eval(b.lmax, theta, phi, row)
		for i := range s {
			s[i] += wj * row[i]
		}
	}
	// Dividing by the limb-darkened disk area normalizes the operator so
	// that the uniform unit-intensity map has unit flux.
	for i := range s {
		s[i] /= norm
	}
	return s
}

// Design returns the matrix mapping a coefficient vector to relative flux
// at the given times, for inclination inc (radians), rotation period p (in
// the units of t), and limb darkening coefficients u.
func (b *Basis) Design(t []float64, inc, p float64, u []float64) *mat.Dense {
	n := ylm.Num(b.lmax)
	s := b.Weights(inc, u)
	out := mat.NewDense(len(t), n, nil)
	row := make([]float64, n)
	for i, ti := range t {
		ylm.RotateZ(b.lmax, 2*math.Pi*ti/p, s, row)
		out.SetRow(i, row)
	}
	return out
}

// LMax returns the maximum expansion degree of the basis.
func (b *Basis) LMax() int {
	return b.lmax
}
