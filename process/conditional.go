package process

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/linalg"
)

var (
	ErrConditionalMarginalized = errors.New("conditional sampling requires a known inclination; disable MarginalizeOverInclination")
	ErrConditionalNormalized   = errors.New("conditional sampling of a normalized process is not implemented; disable Normalized")
	ErrConditionalTemporal     = errors.New("conditional sampling of a time-variable process is not implemented")
)

// SampleYlmConditional draws coefficient vectors from the process
// conditioned on an observed light curve, one per row of the returned
// matrix. The flux model is linear in the coefficients, so the posterior
// is Gaussian and is sampled exactly. Only static processes with a known
// inclination support this; the normalized and inclination-marginalized
// likelihoods are no longer linear in the coefficients.
func (p *Process) SampleYlmConditional(t, flx []float64, noise Noise, view View, baselineMean, baselineVar float64, nsamples int) (*mat.Dense, error) {
	if *p.cfg.MarginalizeOverInclination {
		return nil, ErrConditionalMarginalized
	}
	if *p.cfg.Normalized {
		return nil, ErrConditionalNormalized
	}
	if p.cfg.Tau > 0 {
		return nil, ErrConditionalTemporal
	}
	if len(t) == 0 {
		return nil, ErrEmptyTime
	}
	if err := view.validate(); err != nil {
		return nil, err
	}
	nt := len(t)
	k := p.meanYlm.Len()

	// Data covariance: measurement noise plus the baseline term.
	c := mat.NewSymDense(nt, nil)
	for i := 0; i < nt; i++ {
		for j := i; j < nt; j++ {
			c.SetSym(i, j, baselineVar)
		}
	}
	if err := noise.addTo(c); err != nil {
		return nil, err
	}
	cholC, ok := linalg.Factor(c, 0)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	a := p.basis.Design(t, view.Inc*math.Pi/180, view.Period, view.U)

	// cinvA = C^{-1} A, solved column block at a time.
	cinvA := mat.NewDense(nt, k, nil)
	cinvA.Copy(a)
	cholC.Solve(cinvA)

	// Precision of the posterior: W = A^T C^{-1} A + L^{-1}.
	var w mat.Dense
	w.Mul(a.T(), cinvA)
	linv := linalg.Eye(k)
	p.cholYlm.Solve(linv)
	prec := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			prec.SetSym(i, j, 0.5*(w.At(i, j)+w.At(j, i))+0.5*(linv.At(i, j)+linv.At(j, i)))
		}
	}
	cholW, ok := linalg.Factor(prec, 0)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	// Posterior mean: W^{-1} (A^T C^{-1} d + L^{-1} mu), where d is the
	// raw flux with the baseline restored.
	d := mat.NewVecDense(nt, nil)
	for i := 0; i < nt; i++ {
		d.SetVec(i, flx[i]-baselineMean+1)
	}
	var rhs, lm mat.VecDense
	cd := mat.NewVecDense(nt, nil)
	cd.CopyVec(d)
	cholC.SolveVec(cd.RawVector().Data)
	rhs.MulVec(a.T(), cd)
	lm.MulVec(linv, p.meanYlm)
	mean := make([]float64, k)
	for i := 0; i < k; i++ {
		mean[i] = rhs.AtVec(i) + lm.AtVec(i)
	}
	cholW.SolveVec(mean)

	out := mat.NewDense(nsamples, k, nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	row := make([]float64, k)
	for s := 0; s < nsamples; s++ {
		for i := range row {
			row[i] = p.rng.NormFloat64()
		}
		// U x = z draws from N(0, W^{-1}).
		cholW.UpperSolveVec(row)
		for i := range row {
			row[i] += mean[i]
		}
		out.SetRow(s, row)
	}
	return out, nil
}
