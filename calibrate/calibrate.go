// Package calibrate generates synthetic ensembles of spotted-star light
// curves with known hyperparameters, for validating inference end to end:
// generate a dataset, run the sampler on it, and check that the posterior
// covers the truth.
package calibrate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramstojh/starry-process/process"
)

var ErrBadConfig = errors.New("invalid generator configuration")

// Generator configures a synthetic dataset. The zero value of a field
// selects the documented default.
type Generator struct {
	// Radius and DeltaRadius parametrize the spot radius prior, degrees.
	Radius      float64 `yaml:"radius"`
	DeltaRadius float64 `yaml:"delta_radius"`

	// LatMu and LatSigma are the mode and standard deviation of the
	// spot latitude distribution, degrees.
	LatMu    float64 `yaml:"lat_mu"`
	LatSigma float64 `yaml:"lat_sigma"`

	// Contrast is the fractional spot contrast and NSpots the expected
	// spot count.
	Contrast float64 `yaml:"contrast"`
	NSpots   float64 `yaml:"nspots"`

	// NLC light curves of NPts points each, spanning [0, TMax].
	NLC  int     `yaml:"nlc"`
	NPts int     `yaml:"npts"`
	TMax float64 `yaml:"tmax"`

	// Ferr is the fractional photometric uncertainty per point.
	Ferr float64 `yaml:"ferr"`

	// Period is the rotation period given to every star.
	Period float64 `yaml:"period"`

	// U holds the limb darkening coefficients.
	U []float64 `yaml:"u,omitempty"`

	// Normalized divides each light curve by its sample mean, as real
	// relative photometry would be.
	Normalized *bool `yaml:"normalized,omitempty"`

	// Seed makes the dataset reproducible.
	Seed uint64 `yaml:"seed"`

	// NWorkers bounds the generation concurrency; <= 0 uses one worker
	// per CPU.
	NWorkers int `yaml:"nworkers,omitempty"`

	// Logger, when set, reports generation progress. Not serialized.
	Logger *zap.Logger `yaml:"-"`
}

// Dataset is a generated ensemble along with the truth that produced it.
type Dataset struct {
	// T is the shared time grid; Flux and Ferr are per star, one row
	// each in curve order.
	T    []float64   `yaml:"t"`
	Flux [][]float64 `yaml:"flux"`
	Ferr float64     `yaml:"ferr"`

	// Incs and Periods are the per-star orientations, degrees and time
	// units.
	Incs    []float64 `yaml:"incs"`
	Periods []float64 `yaml:"periods"`

	// Truth records the generator that produced the ensemble.
	Truth Generator `yaml:"truth"`
}

func (g Generator) withDefaults() (Generator, error) {
	if g.Radius == 0 {
		g.Radius = process.DefaultR
	}
	if g.LatMu == 0 && g.LatSigma == 0 {
		g.LatMu, g.LatSigma = 30, 5
	}
	if g.LatSigma <= 0 {
		return g, fmt.Errorf("%w: LatSigma must be positive, got %v", ErrBadConfig, g.LatSigma)
	}
	if g.Contrast == 0 {
		g.Contrast = process.DefaultC
	}
	if g.NSpots == 0 {
		g.NSpots = process.DefaultN
	}
	if g.NLC == 0 {
		g.NLC = 10
	}
	if g.NPts == 0 {
		g.NPts = 1000
	}
	if g.TMax == 0 {
		g.TMax = 4
	}
	if g.Ferr == 0 {
		g.Ferr = 1e-4
	}
	if g.Period == 0 {
		g.Period = process.DefaultPeriod
	}
	if g.Normalized == nil {
		v := true
		g.Normalized = &v
	}
	if g.Logger == nil {
		g.Logger = zap.NewNop()
	}
	return g, nil
}

// Curves converts the dataset to the ensemble-likelihood input format.
func (d *Dataset) Curves() []process.LightCurve {
	out := make([]process.LightCurve, len(d.Flux))
	for i := range d.Flux {
		out[i] = process.LightCurve{
			T:     d.T,
			Flux:  d.Flux[i],
			Noise: process.NoiseScalar(d.Ferr * d.Ferr),
			View:  process.View{Inc: d.Incs[i], Period: d.Periods[i], U: d.Truth.U},
		}
	}
	return out
}
