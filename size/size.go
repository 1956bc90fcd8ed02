// Package size models the distribution of starspot angular radii and its
// moments in the zonal expansion of the spot profile.
package size

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/ramstojh/starry-process/ylm"
)

// MinRadius and MaxRadius bound the mean spot radius, in degrees, for which
// the spherical harmonic expansion at the default degree is trustworthy.
const (
	MinRadius = 10.0
	MaxRadius = 75.0
)

var ErrInvalidRadius = errors.New("invalid spot radius configuration")

const nquad = 16

// Distribution is a uniform prior on the spot radius, centered on R with
// half-width DR, both in degrees. DR = 0 denotes a delta-function prior.
type Distribution struct {
	R  float64
	DR float64
}

// New validates and builds a radius distribution.
func New(r, dr float64) (Distribution, error) {
	if r <= 0 || r >= 90 {
		return Distribution{}, fmt.Errorf("%w: mean radius %v degrees out of (0, 90)", ErrInvalidRadius, r)
	}
	if dr < 0 || r-dr <= 0 || r+dr >= 90 {
		return Distribution{}, fmt.Errorf("%w: half-width %v degrees too large for mean %v", ErrInvalidRadius, dr, r)
	}
	return Distribution{R: r, DR: dr}, nil
}

// Moments returns the first moment e1 of the zonal spot expansion
// coefficients and their second moment e2 under the radius prior:
// e1[l] = E[a_l] and e2[l][l'] = E[a_l a_l'].
func (d Distribution) Moments(lmax int) (e1 []float64, e2 [][]float64) {
	e1 = make([]float64, lmax+1)
	e2 = make([][]float64, lmax+1)
	for i := range e2 {
		e2[i] = make([]float64, lmax+1)
	}
	rad := math.Pi / 180

	if d.DR == 0 {
		a := make([]float64, lmax+1)
		ylm.CapCoeffs(lmax, d.R*rad, a)
		copy(e1, a)
		for l := 0; l <= lmax; l++ {
			for lp := 0; lp <= lmax; lp++ {
				e2[l][lp] = a[l] * a[lp]
			}
		}
		return e1, e2
	}

	x := make([]float64, nquad)
	w := make([]float64, nquad)
	quad.Legendre{}.FixedLocations(x, w, (d.R-d.DR)*rad, (d.R+d.DR)*rad)
	norm := 1 / (2 * d.DR * rad)
	a := make([]float64, lmax+1)
	for k := range x {
		ylm.CapCoeffs(lmax, x[k], a)
		wk := w[k] * norm
		for l := 0; l <= lmax; l++ {
			e1[l] += wk * a[l]
			for lp := 0; lp <= lmax; lp++ {
				e2[l][lp] += wk * a[l] * a[lp]
			}
		}
	}
	return e1, e2
}
