package latitude

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var ErrNoSolution = errors.New("no latitude shape parameters match the requested mode and standard deviation")

// Beta2Gauss maps the compact shape parameters a, b to the mode mu and
// standard deviation sigma of the latitude distribution, both in degrees.
// It is the inverse of Gauss2Beta.
func Beta2Gauss(a, b float64) (mu, sigma float64, err error) {
	d, err := FromShape(a, b)
	if err != nil {
		return 0, 0, err
	}
	deg := 180 / math.Pi
	return d.Mode() * deg, d.Std() * deg, nil
}

// Gauss2Beta maps the mode mu and standard deviation sigma of the latitude
// distribution, in degrees, to the compact shape parameters a, b. The
// solve is a nested bisection over the log shape parameters: the mode is
// monotone decreasing in log(alpha) at fixed beta, and along the curve of
// mode-matched alphas the standard deviation is monotone decreasing in
// log(beta). ErrNoSolution is returned only when no distribution in the
// supported shape range attains the requested pair, for example a narrow
// mode near the equator combined with a wide sigma.
func Gauss2Beta(mu, sigma float64) (a, b float64, err error) {
	if mu < 0 || mu >= 90 {
		return 0, 0, fmt.Errorf("%w: mode %v degrees out of [0, 90)", ErrNoSolution, mu)
	}
	if sigma <= 0 || sigma > SigmaMax {
		return 0, 0, fmt.Errorf("%w: std %v degrees out of (0, %v]", ErrNoSolution, sigma, SigmaMax)
	}
	deg := 180 / math.Pi
	modeDeg := func(la, lb float64) float64 {
		d := Distribution{Alpha: math.Exp(la) + abMin, Beta: math.Exp(lb) + abMin}
		return d.Mode() * deg
	}
	// matchMode finds log(alpha) in [0, LogAlphaMax] with the latitude mode
	// equal to mu, at fixed log(beta). The mode falls from 90 degrees at
	// alpha = 1 as alpha grows; modes below the value at LogAlphaMax are
	// unreachable at this beta.
	matchMode := func(lb float64) (float64, bool) {
		if modeDeg(LogAlphaMax, lb) > mu {
			return 0, false
		}
		lo, hi := 0.0, LogAlphaMax
		for it := 0; it < 48; it++ {
			mid := 0.5 * (lo + hi)
			if modeDeg(mid, lb) > mu {
				lo = mid
			} else {
				hi = mid
			}
		}
		return 0.5 * (lo + hi), true
	}
	stdDeg := func(la, lb float64) float64 {
		d := Distribution{Alpha: math.Exp(la) + abMin, Beta: math.Exp(lb) + abMin}
		return d.Std() * deg
	}
	la, ok := matchMode(0)
	if !ok {
		return 0, 0, fmt.Errorf("%w: mode %v degrees below the supported range", ErrNoSolution, mu)
	}
	if sigma > stdDeg(la, 0) {
		return 0, 0, fmt.Errorf("%w: std %v degrees too wide for mode %v degrees", ErrNoSolution, sigma, mu)
	}
	// Larger beta narrows the mode-matched distribution, and betas too
	// large to reach the mode at all count as narrower still.
	lo, hi := 0.0, LogBetaMax
	for it := 0; it < 48; it++ {
		mid := 0.5 * (lo + hi)
		lam, ok := matchMode(mid)
		if ok && stdDeg(lam, mid) > sigma {
			lo = mid
		} else {
			hi = mid
		}
	}
	lb := 0.5 * (lo + hi)
	la, ok = matchMode(lb)
	if !ok {
		la, _ = matchMode(lo)
		lb = lo
	}
	d := Distribution{Alpha: math.Exp(la) + abMin, Beta: math.Exp(lb) + abMin}
	if math.Abs(d.Mode()*deg-mu) > 1e-2 || math.Abs(d.Std()*deg-sigma) > 1e-2 {
		return 0, 0, fmt.Errorf("%w: mu=%v, sigma=%v", ErrNoSolution, mu, sigma)
	}
	return la / LogAlphaMax, lb / LogBetaMax, nil
}

// LogJacobian returns the log of the absolute determinant of the Jacobian
// of the (a, b) -> (mu, sigma) map. Adding this term to a log posterior
// sampled uniformly in a and b yields a uniform prior on the latitude mode
// and standard deviation instead. Distributions wider than SigmaMax are
// penalized to -Inf.
func LogJacobian(a, b float64) float64 {
	_, sigma, err := Beta2Gauss(a, b)
	if err != nil || sigma > SigmaMax {
		return math.Inf(-1)
	}
	f := func(out, x []float64) {
		mu, sig, err := Beta2Gauss(x[0], x[1])
		if err != nil {
			out[0], out[1] = math.NaN(), math.NaN()
			return
		}
		out[0], out[1] = mu, sig
	}
	jac := mat.NewDense(2, 2, nil)
	fd.Jacobian(jac, f, []float64{a, b}, nil)
	det := jac.At(0, 0)*jac.At(1, 1) - jac.At(0, 1)*jac.At(1, 0)
	if det == 0 || math.IsNaN(det) {
		return math.Inf(-1)
	}
	return math.Log(math.Abs(det))
}
