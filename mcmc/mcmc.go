// Package mcmc adapts a log probability over bounded physical parameters
// for samplers and optimizers that work in unconstrained space. Parameters
// are mapped through a scaled logistic transform, so any point a sampler
// proposes corresponds to an in-bounds physical point, and the log
// Jacobian of the transform is folded into the target density.
package mcmc

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/ramstojh/starry-process/linalg"
)

var ErrNoParams = errors.New("no parameters to sample")

// Param is one bounded model parameter.
type Param struct {
	Name string
	Min  float64
	Max  float64
}

// LogProbFunc evaluates the log posterior at a point in physical
// (bounded) parameter space. It may return -Inf for rejected states.
type LogProbFunc func(x []float64) float64

// Interface wraps a bounded log probability for unconstrained samplers.
type Interface struct {
	params  []Param
	logProb LogProbFunc
	rng     *rand.Rand
}

// New builds an interface over the given parameters. The log probability
// receives physical coordinates; all other methods speak the
// unconstrained parametrization.
func New(params []Param, logProb LogProbFunc, seed uint64) (*Interface, error) {
	if len(params) == 0 {
		return nil, ErrNoParams
	}
	for _, p := range params {
		if !(p.Max > p.Min) {
			return nil, errors.New("parameter " + p.Name + " has an empty range")
		}
	}
	return &Interface{
		params:  params,
		logProb: logProb,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Names returns the parameter names in order.
func (itf *Interface) Names() []string {
	out := make([]string, len(itf.params))
	for i, p := range itf.params {
		out[i] = p.Name
	}
	return out
}

// Dim returns the number of parameters.
func (itf *Interface) Dim() int { return len(itf.params) }

// Transform maps a point from unconstrained space to physical space. The
// result is strictly inside the parameter bounds for any finite input.
func (itf *Interface) Transform(u []float64) []float64 {
	out := make([]float64, len(itf.params))
	for i, p := range itf.params {
		s := 1 / (1 + math.Exp(-u[i]))
		out[i] = p.Min + (p.Max-p.Min)*s
	}
	return out
}

// Untransform maps a physical point to unconstrained space. Points on or
// outside the bounds map to +/-Inf.
func (itf *Interface) Untransform(x []float64) []float64 {
	out := make([]float64, len(itf.params))
	for i, p := range itf.params {
		s := (x[i] - p.Min) / (p.Max - p.Min)
		out[i] = math.Log(s / (1 - s))
	}
	return out
}

// LogProb evaluates the target density in unconstrained space: the
// physical log probability plus the log Jacobian of the transform, so
// that sampling u and mapping through Transform yields the intended
// distribution over the physical parameters.
func (itf *Interface) LogProb(u []float64) float64 {
	lp := itf.logProb(itf.Transform(u))
	if math.IsInf(lp, -1) || math.IsNaN(lp) {
		return math.Inf(-1)
	}
	for i, p := range itf.params {
		// d x_i / d u_i = (max - min) s (1 - s).
		s := 1 / (1 + math.Exp(-u[i]))
		lp += math.Log(p.Max-p.Min) + math.Log(s) + math.Log(1-s)
	}
	return lp
}

// Optimize maximizes the target density with Nelder-Mead, starting from
// the midpoint of every parameter range, and returns the optimum in
// unconstrained space along with its log probability.
func (itf *Interface) Optimize() ([]float64, float64, error) {
	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			lp := itf.LogProb(u)
			if math.IsInf(lp, -1) {
				return math.MaxFloat64
			}
			return -lp
		},
	}
	u0 := make([]float64, len(itf.params)) // midpoint of every range
	result, err := optimize.Minimize(problem, u0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, err
	}
	return result.X, -result.F, nil
}

// InitialState returns nwalkers starting points in unconstrained space,
// drawn from a Gaussian approximation of the posterior at its mode: the
// inverse Hessian of the negative log density sets the spread. When the
// Hessian is not positive definite the walkers fall back to a small ball
// around the mode. Rows are walkers.
func (itf *Interface) InitialState(nwalkers int) (*mat.Dense, error) {
	mode, _, err := itf.Optimize()
	if err != nil {
		return nil, err
	}
	dim := len(itf.params)

	hess := mat.NewSymDense(dim, nil)
	fd.Hessian(hess, func(u []float64) float64 {
		lp := itf.LogProb(u)
		if math.IsInf(lp, -1) {
			return math.MaxFloat64
		}
		return -lp
	}, mode, nil)

	out := mat.NewDense(nwalkers, dim, nil)
	if cov, ok := invertToSym(hess); ok {
		if normal, ok := distmv.NewNormal(mode, cov, itf.rng); ok {
			row := make([]float64, dim)
			for w := 0; w < nwalkers; w++ {
				normal.Rand(row)
				out.SetRow(w, row)
			}
			return out, nil
		}
	}
	// Fallback: a tight ball around the mode.
	for w := 0; w < nwalkers; w++ {
		for i := 0; i < dim; i++ {
			out.Set(w, i, mode[i]+1e-4*itf.rng.NormFloat64())
		}
	}
	return out, nil
}

// invertToSym inverts a symmetric positive definite matrix, reporting
// failure instead of returning garbage for indefinite input.
func invertToSym(a *mat.SymDense) (*mat.SymDense, bool) {
	n := a.SymmetricDim()
	chol, ok := linalg.Factor(a, 0)
	if !ok {
		return nil, false
	}
	inv := linalg.Eye(n)
	chol.Solve(inv)
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, 0.5*(inv.At(i, j)+inv.At(j, i)))
		}
	}
	return out, true
}
