// Package process implements an interpretable Gaussian process over the
// light curves of spotted stars. The process is parametrized directly by
// the statistical properties of the starspots (radius, latitude
// distribution, contrast, count), which are marginalized into the mean
// and covariance of a spherical harmonic expansion of the surface. Flux
// moments follow by applying the disk-integration operator, optionally
// marginalized over the stellar inclination.
package process

import (
	"errors"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/flux"
	"github.com/ramstojh/starry-process/latitude"
	"github.com/ramstojh/starry-process/linalg"
	"github.com/ramstojh/starry-process/moments"
	"github.com/ramstojh/starry-process/size"
)

var (
	ErrNotPositiveDefinite = errors.New("coefficient covariance is not positive definite")
	ErrNoTimescale         = errors.New("temporal sampling requires a positive Tau")
	ErrEmptyTime           = errors.New("time vector is empty")
)

// Process is a Gaussian process over spotted-star light curves.
type Process struct {
	cfg Config
	lat latitude.Distribution
	sz  size.Distribution

	meanYlm *mat.VecDense
	covYlm  *mat.SymDense
	cholYlm *linalg.Chol
	basis   *flux.Basis

	children []*Process // non-nil only for sums

	mu    sync.Mutex
	rng   *rand.Rand
	marg  *flux.Marginal
	margU []float64
}

// New builds a process from the configuration.
func New(cfg Config) (*Process, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	var lat latitude.Distribution
	if cfg.Mu != nil {
		a, b, err := latitude.Gauss2Beta(*cfg.Mu, *cfg.Sigma)
		if err != nil {
			return nil, err
		}
		cfg.A, cfg.B = &a, &b
	}
	lat, err = latitude.FromShape(*cfg.A, *cfg.B)
	if err != nil {
		return nil, err
	}
	sz, err := size.New(cfg.R, cfg.DR)
	if err != nil {
		return nil, err
	}

	mean, cov := moments.Compute(moments.Config{
		Size:     sz,
		Latitude: lat,
		Contrast: cfg.C,
		NSpots:   cfg.N,
		LMax:     cfg.YDeg,
		Eps:      cfg.EpsY,
		EpsHigh:  cfg.EpsY15,
	})
	chol, ok := linalg.Factor(cov, 0)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	return &Process{
		cfg:     cfg,
		lat:     lat,
		sz:      sz,
		meanYlm: mean,
		covYlm:  cov,
		cholYlm: chol,
		basis:   flux.NewBasis(cfg.YDeg),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// YDeg returns the spherical harmonic degree of the expansion.
func (p *Process) YDeg() int { return p.cfg.YDeg }

// NYlm returns the number of expansion coefficients.
func (p *Process) NYlm() int { return p.meanYlm.Len() }

// Normalized reports whether the process models mean-normalized flux.
func (p *Process) Normalized() bool { return *p.cfg.Normalized }

// MarginalizeOverInclination reports whether the flux moments marginalize
// over an isotropic inclination prior.
func (p *Process) MarginalizeOverInclination() bool {
	return *p.cfg.MarginalizeOverInclination
}

// Shape returns the compact latitude shape parameters.
func (p *Process) Shape() (a, b float64) { return p.lat.Shape() }

// Radius returns the mean spot radius and the half-width of the radius
// prior, in degrees.
func (p *Process) Radius() (r, dr float64) { return p.sz.R, p.sz.DR }

// LatitudeMode returns the mode and standard deviation of the spot
// latitude distribution, in degrees.
func (p *Process) LatitudeMode() (mu, sigma float64) {
	deg := 180 / math.Pi
	return p.lat.Mode() * deg, p.lat.Std() * deg
}

// MeanYlm returns the mean coefficient vector of the process.
func (p *Process) MeanYlm() *mat.VecDense {
	out := mat.NewVecDense(p.meanYlm.Len(), nil)
	out.CopyVec(p.meanYlm)
	return out
}

// CovYlm returns the coefficient covariance matrix of the process.
func (p *Process) CovYlm() *mat.SymDense {
	n := p.covYlm.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(p.covYlm)
	return out
}

// CholYlm returns the lower Cholesky factor of the coefficient covariance.
func (p *Process) CholYlm() *linalg.Chol {
	return p.cholYlm
}

// LogJacobian returns the log determinant of the Jacobian of the latitude
// reparametrization. Adding it to a log posterior sampled uniformly in the
// shape parameters yields a uniform prior on the latitude mode and standard
// deviation instead. For a sum of processes the contributions add.
func (p *Process) LogJacobian() float64 {
	if len(p.children) > 0 {
		total := 0.0
		for _, c := range p.children {
			total += c.LogJacobian()
		}
		return total
	}
	a, b := p.lat.Shape()
	return latitude.LogJacobian(a, b)
}

// marginal returns the inclination-marginalized flux moments, rebuilding
// them only when the limb darkening changes.
func (p *Process) marginal(u []float64) (*flux.Marginal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.marg != nil && equalCoeffs(p.margU, u) {
		return p.marg, nil
	}
	m, err := p.basis.NewMarginal(p.meanYlm, p.covYlm, u, p.cfg.CovPts)
	if err != nil {
		return nil, err
	}
	p.marg = m
	p.margU = append([]float64(nil), u...)
	return m, nil
}

func equalCoeffs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// meanRaw returns the expected flux (baseline included, so an immaculate
// star has flux one) at each time.
func (p *Process) meanRaw(t []float64, view View) ([]float64, error) {
	out := make([]float64, len(t))
	if *p.cfg.MarginalizeOverInclination {
		m, err := p.marginal(view.U)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = m.Mean
		}
		return out, nil
	}
	// The mean map is zonal, so the expected flux is phase independent.
	a := p.basis.Design(t, view.Inc*math.Pi/180, view.Period, view.U)
	v := mat.NewVecDense(len(t), out)
	v.MulVec(a, p.meanYlm)
	return out, nil
}

// covRaw returns the covariance of the raw flux along with its baseline
// mean, before any normalization.
func (p *Process) covRaw(t []float64, view View) (*mat.SymDense, float64, error) {
	var cov *mat.SymDense
	var baseline float64
	if *p.cfg.MarginalizeOverInclination {
		m, err := p.marginal(view.U)
		if err != nil {
			return nil, 0, err
		}
		cov = m.Cov(t, view.Period)
		baseline = m.Mean
	} else {
		a := p.basis.Design(t, view.Inc*math.Pi/180, view.Period, view.U)
		var tmp, full mat.Dense
		tmp.Mul(a, p.covYlm)
		full.Mul(&tmp, a.T())
		cov = mat.NewSymDense(len(t), nil)
		for i := 0; i < len(t); i++ {
			for j := i; j < len(t); j++ {
				cov.SetSym(i, j, 0.5*(full.At(i, j)+full.At(j, i)))
			}
		}
		var mv mat.VecDense
		mv.MulVec(a, p.meanYlm)
		baseline = mv.AtVec(0)
	}
	if p.cfg.Tau > 0 {
		k := p.cfg.Kernel.Cov(t, t, p.cfg.Tau)
		for i := 0; i < len(t); i++ {
			for j := i; j < len(t); j++ {
				cov.SetSym(i, j, cov.At(i, j)*k.At(i, j))
			}
		}
	}
	return cov, baseline, nil
}

// Mean returns the flux mean vector of the process over the given times.
// Flux is relative to the unspotted baseline, so an immaculate star has
// zero flux. A normalized process has zero mean by construction.
func (p *Process) Mean(t []float64, view View) ([]float64, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTime
	}
	if err := view.validate(); err != nil {
		return nil, err
	}
	if *p.cfg.Normalized {
		return make([]float64, len(t)), nil
	}
	out, err := p.meanRaw(t, view)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] -= 1
	}
	return out, nil
}

// Cov returns the flux covariance matrix of the process over the given
// times. When the process is normalized this is the series-expanded
// covariance of mean-normalized flux; an expansion parameter above the
// configured threshold yields a matrix of +Inf, and hence a log likelihood
// of -Inf.
func (p *Process) Cov(t []float64, view View) (*mat.SymDense, error) {
	if len(t) == 0 {
		return nil, ErrEmptyTime
	}
	if err := view.validate(); err != nil {
		return nil, err
	}
	cov, baseline, err := p.covRaw(t, view)
	if err != nil {
		return nil, err
	}
	if *p.cfg.Normalized {
		cov = p.normalize(baseline, cov)
	}
	return cov, nil
}
