package process

import (
	"math"

	"github.com/ramstojh/starry-process/linalg"
)

// LogLikelihood returns the marginal likelihood of a light curve under the
// process, with the surface coefficients analytically integrated out.
// The flux should be in the same convention as Mean and Sample: relative
// to (and excluding) the baseline. baselineMean shifts the process mean
// and baselineVar adds an unknown constant offset to the model, entering
// the covariance as a rank-one term. Any numerical failure, including a
// covariance that is not positive definite, yields -Inf rather than an
// error so that samplers can treat it as a rejected state.
func (p *Process) LogLikelihood(t, flx []float64, noise Noise, view View, baselineMean, baselineVar float64) float64 {
	if len(t) != len(flx) {
		return math.Inf(-1)
	}
	mean, err := p.Mean(t, view)
	if err != nil {
		return math.Inf(-1)
	}
	cov, err := p.Cov(t, view)
	if err != nil {
		return math.Inf(-1)
	}
	k := len(t)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			cov.SetSym(i, j, cov.At(i, j)+baselineVar)
		}
	}
	if err := noise.addTo(cov); err != nil {
		return math.Inf(-1)
	}
	chol, ok := linalg.Factor(cov, 0)
	if !ok {
		return math.Inf(-1)
	}
	r := make([]float64, k)
	for i := range r {
		r[i] = flx[i] - mean[i] - baselineMean
	}
	alpha := append([]float64(nil), r...)
	chol.SolveVec(alpha)
	quad := 0.0
	for i := range r {
		quad += r[i] * alpha[i]
	}
	ll := -0.5*quad - 0.5*chol.LogDet() - 0.5*float64(k)*math.Log(2*math.Pi)
	if math.IsNaN(ll) {
		return math.Inf(-1)
	}
	return ll
}
