package process

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// normalize maps the covariance of the raw flux to the covariance of flux
// normalized by its sample mean. The map is a series expansion in
// z = <cov> / mu^2, the ratio of the mean covariance to the squared mean
// flux; the expansion diverges for large z, so values beyond the configured
// threshold return a covariance of +Inf.
//
// Writing the normalized flux as (1 + f_i) / (1 + fbar) - 1 and expanding
// the moments of the inverse sample mean gives coefficients that are double
// factorials of the expansion order.
func (p *Process) normalize(mu float64, cov *mat.SymDense) *mat.SymDense {
	k := cov.SymmetricDim()
	out := mat.NewSymDense(k, nil)

	// Grand mean and row means of the covariance.
	rows := make([]float64, k)
	total := 0.0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			rows[i] += cov.At(i, j)
		}
		total += rows[i]
		rows[i] /= float64(k)
	}
	mbar := total / float64(k*k)
	z := mbar / (mu * mu)

	if z <= 0 || z > p.cfg.NormZMax {
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				out.SetSym(i, j, math.Inf(1))
			}
		}
		return out
	}

	// Partial sums of the double factorial series. With odd!! denoting
	// (2n-1)!! we need
	//   s0 = sum (2n-1)!! z^n          s1 = sum (2n+1)!! z^n
	//   s2 = sum (2n+2) (2n+1)!! z^n   s3 = sum (2n+2) (2n+3)!! z^n
	var s0, s1, s2, s3 float64
	zn := 1.0   // z^n
	dfm := 1.0  // (2n-1)!!
	dfp := 1.0  // (2n+1)!!
	dfpp := 3.0 // (2n+3)!!
	for n := 0; n <= p.cfg.NormOrder; n++ {
		s0 += dfm * zn
		s1 += dfp * zn
		s2 += float64(2*n+2) * dfp * zn
		s3 += float64(2*n+2) * dfpp * zn
		zn *= z
		dfm *= float64(2*n + 1)
		dfp *= float64(2*n + 3)
		dfpp *= float64(2*n + 5)
	}

	c := make([]float64, k)
	for i := 0; i < k; i++ {
		c[i] = z * rows[i] / mbar
	}
	const0 := s1 - s0*s0
	crossC := s0*s1 - s2
	quadC := s3 - s1*s1
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			v := const0 + s1*cov.At(i, j)/(mu*mu) + crossC*(c[i]+c[j]) + quadC*c[i]*c[j]
			out.SetSym(i, j, v)
		}
	}
	return out
}
