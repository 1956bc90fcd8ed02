// Package moments computes the mean and covariance of the spherical
// harmonic coefficients of a spotted stellar surface, marginalized over the
// spot radius, latitude, and longitude distributions.
//
// Spots are zonal caps rotated to random positions. The longitude is
// uniform, so the covariance couples only harmonics of equal order m, the
// mean is purely zonal, and orders m and -m decouple with a factor of one
// half relative to the zonal block. A star with n spots of fractional
// contrast c scales the single-spot mean by n*c and the centered second
// moment by n*c^2.
package moments

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/latitude"
	"github.com/ramstojh/starry-process/size"
	"github.com/ramstojh/starry-process/ylm"
)

const nlat = 80

// Config collects the pieces of the integral chain.
type Config struct {
	Size     size.Distribution
	Latitude latitude.Distribution
	Contrast float64 // fractional spot contrast
	NSpots   float64 // expected number of spots, need not be integral
	LMax     int

	// Diagonal stabilization. EpsHigh applies to degrees above 15, which
	// lose precision first.
	Eps     float64
	EpsHigh float64
}

// Compute returns the mean vector and covariance matrix of the spherical
// harmonic coefficients, including the uniform-photosphere baseline in the
// Y00 term.
func Compute(cfg Config) (*mat.VecDense, *mat.SymDense) {
	lmax := cfg.LMax
	n := ylm.Num(lmax)

	e1, e2 := cfg.Size.Moments(lmax)
	phi, w := cfg.Latitude.Quadrature(nlat)

	// Scale factors from the addition theorem.
	cl := make([]float64, lmax+1)
	for l := 0; l <= lmax; l++ {
		cl[l] = math.Sqrt(4 * math.Pi / (2*float64(l) + 1))
	}

	// Colatitude profiles at every quadrature node, for both hemispheres.
	var norm float64
	type node struct {
		weight float64
		theta  []float64
	}
	nodes := make([]node, 0, 2*len(phi))
	for k := range phi {
		for _, thetaC := range []float64{math.Pi/2 - phi[k], math.Pi/2 + phi[k]} {
			th := make([]float64, n)
			ylm.EvalColat(lmax, thetaC, th)
			nodes = append(nodes, node{weight: 0.5 * w[k], theta: th})
		}
		norm += w[k]
	}

	// First moment of a unit-depth spot: zonal only.
	mean1 := make([]float64, n)
	for _, nd := range nodes {
		for l := 0; l <= lmax; l++ {
			mean1[ylm.Index(l, 0)] += nd.weight / norm * e1[l] * cl[l] * nd.theta[ylm.Index(l, 0)]
		}
	}

	// Second moment blocks, coupling (l, m) with (l', m) only.
	cov := mat.NewSymDense(n, nil)
	for m := 0; m <= lmax; m++ {
		km := 1.0
		if m != 0 {
			km = 0.5
		}
		for l := m; l <= lmax; l++ {
			for lp := l; lp <= lmax; lp++ {
				var sec float64
				for _, nd := range nodes {
					sec += nd.weight / norm *
						nd.theta[ylm.Index(l, m)] * nd.theta[ylm.Index(lp, m)]
				}
				sec *= km * e2[l][lp] * cl[l] * cl[lp]
				v := cfg.NSpots * cfg.Contrast * cfg.Contrast *
					(sec - mean1[ylm.Index(l, m)]*mean1[ylm.Index(lp, m)])
				cov.SetSym(ylm.Index(l, m), ylm.Index(lp, m), v)
				if m != 0 {
					cov.SetSym(ylm.Index(l, -m), ylm.Index(lp, -m), v)
				}
			}
		}
	}

	mean := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		mean.SetVec(i, cfg.NSpots*cfg.Contrast*mean1[i])
	}
	mean.SetVec(ylm.Index(0, 0), mean.AtVec(ylm.Index(0, 0))+ylm.Y00Uniform)

	for l := 0; l <= lmax; l++ {
		eps := cfg.Eps
		if l > 15 {
			eps += cfg.EpsHigh
		}
		for m := -l; m <= l; m++ {
			i := ylm.Index(l, m)
			cov.SetSym(i, i, cov.At(i, i)+eps)
		}
	}
	return mean, cov
}
