package process

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/flux"
	"github.com/ramstojh/starry-process/linalg"
	"github.com/ramstojh/starry-process/ylm"
)

var ErrIncompatibleSum = errors.New("incompatible processes")

// Add composes two processes into one describing a star carrying both
// spot populations, e.g. a high-latitude and an equatorial belt. The
// coefficient means and covariances add; the unspotted baseline is
// counted once. The operands must agree on the expansion degree, the
// normalization and marginalization flags, and the temporal settings.
func Add(a, b *Process) (*Process, error) {
	if a.cfg.YDeg != b.cfg.YDeg {
		return nil, fmt.Errorf("%w: degrees %d and %d", ErrIncompatibleSum, a.cfg.YDeg, b.cfg.YDeg)
	}
	if *a.cfg.Normalized != *b.cfg.Normalized {
		return nil, fmt.Errorf("%w: normalization flags differ", ErrIncompatibleSum)
	}
	if *a.cfg.MarginalizeOverInclination != *b.cfg.MarginalizeOverInclination {
		return nil, fmt.Errorf("%w: marginalization flags differ", ErrIncompatibleSum)
	}
	if a.cfg.Tau != 0 || b.cfg.Tau != 0 {
		return nil, fmt.Errorf("%w: time-variable processes cannot be summed", ErrIncompatibleSum)
	}
	if a.cfg.CovPts != b.cfg.CovPts {
		return nil, fmt.Errorf("%w: covariance grids %d and %d", ErrIncompatibleSum, a.cfg.CovPts, b.cfg.CovPts)
	}

	k := a.meanYlm.Len()
	mean := mat.NewVecDense(k, nil)
	mean.AddVec(a.meanYlm, b.meanYlm)
	mean.SetVec(ylm.Index(0, 0), mean.AtVec(ylm.Index(0, 0))-ylm.Y00Uniform)
	cov := mat.NewSymDense(k, nil)
	cov.AddSym(a.covYlm, b.covYlm)
	chol, ok := linalg.Factor(cov, 0)
	if !ok {
		return nil, ErrNotPositiveDefinite
	}

	children := flatten(a, b)
	return &Process{
		cfg:      a.cfg,
		lat:      a.lat,
		sz:       a.sz,
		meanYlm:  mean,
		covYlm:   cov,
		cholYlm:  chol,
		basis:    flux.NewBasis(a.cfg.YDeg),
		children: children,
		rng:      rand.New(rand.NewSource(a.cfg.Seed)),
	}, nil
}

// flatten collects the leaf processes of nested sums.
func flatten(ps ...*Process) []*Process {
	var out []*Process
	for _, p := range ps {
		if len(p.children) > 0 {
			out = append(out, p.children...)
		} else {
			out = append(out, p)
		}
	}
	return out
}
