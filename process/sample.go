package process

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/linalg"
)

// SampleYlm draws nsamples coefficient vectors from the process, one per
// row of the returned matrix.
func (p *Process) SampleYlm(nsamples int) *mat.Dense {
	k := p.meanYlm.Len()
	out := mat.NewDense(nsamples, k, nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	z := make([]float64, k)
	row := make([]float64, k)
	for s := 0; s < nsamples; s++ {
		for i := range z {
			z[i] = p.rng.NormFloat64()
		}
		p.cholYlm.LowerMulVec(z, row)
		for i := range row {
			row[i] += p.meanYlm.AtVec(i)
		}
		out.SetRow(s, row)
	}
	return out
}

// SampleYlmTemporal draws coefficient vectors that evolve over time under
// the configured temporal kernel. The result has one row per sample; each
// row holds len(t) stacked coefficient vectors. Spots grow and decay on
// the timescale tau while the process statistics stay stationary.
func (p *Process) SampleYlmTemporal(t []float64, nsamples int) (*mat.Dense, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTime
	}
	if p.cfg.Tau <= 0 {
		return nil, ErrNoTimescale
	}
	k := p.meanYlm.Len()
	nt := len(t)

	kt := p.cfg.Kernel.Cov(t, t, p.cfg.Tau)
	symT := mat.NewSymDense(nt, nil)
	for i := 0; i < nt; i++ {
		for j := i; j < nt; j++ {
			symT.SetSym(i, j, 0.5*(kt.At(i, j)+kt.At(j, i)))
		}
	}
	cholT, ok := linalg.Factor(symT, p.cfg.EpsY)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}
	ltT := lowerTranspose(cholT)

	out := mat.NewDense(nsamples, nt*k, nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	// A draw is L_y Z L_t^T + mean, with Z a k x nt matrix of unit
	// normals; the Kronecker structure avoids factoring the full
	// (nt k) x (nt k) covariance.
	z := mat.NewDense(k, nt, nil)
	left := mat.NewDense(k, nt, nil)
	col := make([]float64, k)
	tmp := make([]float64, k)
	var full mat.Dense
	for s := 0; s < nsamples; s++ {
		for i := 0; i < k; i++ {
			for j := 0; j < nt; j++ {
				z.Set(i, j, p.rng.NormFloat64())
			}
		}
		for j := 0; j < nt; j++ {
			mat.Col(col, j, z)
			p.cholYlm.LowerMulVec(col, tmp)
			for i := 0; i < k; i++ {
				left.Set(i, j, tmp[i])
			}
		}
		full.Mul(left, ltT)
		for j := 0; j < nt; j++ {
			for i := 0; i < k; i++ {
				out.Set(s, j*k+i, full.At(i, j)+p.meanYlm.AtVec(i))
			}
		}
	}
	return out, nil
}

// lowerTranspose expands the lower Cholesky factor held by c into a dense
// L^T for right multiplication. Applying L to unit vectors recovers its
// columns.
func lowerTranspose(c *linalg.Chol) *mat.Dense {
	n := c.Size()
	out := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := range e {
			e[i] = 0
		}
		e[j] = 1
		c.LowerMulVec(e, col)
		out.SetRow(j, col)
	}
	return out
}

// Sample draws nsamples flux realizations of the process over the given
// times, one per row. Normalized processes sample the raw flux and divide
// each draw by its own sample mean, mimicking relative photometry with an
// unknown baseline.
func (p *Process) Sample(t []float64, view View, nsamples int) (*mat.Dense, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTime
	}
	if err := view.validate(); err != nil {
		return nil, err
	}
	nt := len(t)
	mean, err := p.meanRaw(t, view)
	if err != nil {
		return nil, err
	}
	cov, _, err := p.covRaw(t, view)
	if err != nil {
		return nil, err
	}
	chol, ok := linalg.Factor(cov, p.cfg.Eps)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}
	out := mat.NewDense(nsamples, nt, nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	z := make([]float64, nt)
	row := make([]float64, nt)
	for s := 0; s < nsamples; s++ {
		for i := range z {
			z[i] = p.rng.NormFloat64()
		}
		chol.LowerMulVec(z, row)
		for i := range row {
			row[i] += mean[i]
		}
		if p.Normalized() {
			m := 0.0
			for _, v := range row {
				m += v
			}
			m /= float64(nt)
			for i := range row {
				row[i] = row[i]/m - 1
			}
		} else {
			for i := range row {
				row[i] -= 1
			}
		}
		out.SetRow(s, row)
	}
	return out, nil
}
