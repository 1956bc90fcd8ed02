package process

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/temporal"
)

var (
	ErrAmbiguousLatitude = errors.New("provide either A and B or Mu and Sigma, not both")
	ErrInvalidView       = errors.New("invalid view")
	ErrNoiseSize         = errors.New("noise dimensions do not match the light curve")
)

// Config collects the hyperparameters of the process. Zero values select
// the documented defaults; the optional pointer fields distinguish "unset"
// from a legitimate zero.
type Config struct {
	// R is the mean spot radius and DR the half-width of the uniform
	// radius prior, both in degrees. DR = 0 is a delta-function prior.
	R  float64
	DR float64

	// A and B are the compact latitude shape parameters on [0, 1].
	// Mutually exclusive with Mu and Sigma.
	A *float64
	B *float64

	// Mu and Sigma are the mode and standard deviation of the spot
	// latitude distribution in degrees. Mutually exclusive with A and B.
	Mu    *float64
	Sigma *float64

	// C is the fractional spot contrast and N the expected spot count,
	// which need not be integral.
	C float64
	N float64

	// Tau is the spot evolution timescale in the units of the time
	// arrays; zero disables time variability. Kernel defaults to
	// Matern-3/2.
	Tau    float64
	Kernel temporal.Kernel

	// MarginalizeOverInclination marginalizes the flux moments over an
	// isotropic inclination prior. Defaults to true.
	MarginalizeOverInclination *bool

	// Normalized declares that observed light curves are mean-normalized,
	// which is almost always the case since the unspotted baseline is not
	// observable. Defaults to true.
	Normalized *bool

	// CovPts is the phase-lag grid size for the marginalized covariance.
	CovPts int

	// YDeg is the spherical harmonic degree of the expansion.
	YDeg int

	// NormOrder and NormZMax control the normalized-covariance series.
	NormOrder int
	NormZMax  float64

	// Eps is the jitter added to the diagonal of the flux covariance
	// before factorization when sampling. EpsY stabilizes the diagonal
	// of the coefficient covariance, with EpsY15 applied additionally
	// above degree 15. Zero selects the defaults.
	Eps    float64
	EpsY   float64
	EpsY15 float64

	// Seed seeds the sampling stream.
	Seed uint64
}

func (c Config) withDefaults() (Config, error) {
	gauss := c.Mu != nil || c.Sigma != nil
	shape := c.A != nil || c.B != nil
	if gauss && shape {
		return c, ErrAmbiguousLatitude
	}
	if gauss && (c.Mu == nil || c.Sigma == nil) {
		return c, fmt.Errorf("%w: Mu and Sigma must be set together", ErrAmbiguousLatitude)
	}
	if c.R == 0 {
		c.R = DefaultR
	}
	if !gauss {
		if c.A == nil {
			c.A = ptr(DefaultA)
		}
		if c.B == nil {
			c.B = ptr(DefaultB)
		}
	}
	if c.C == 0 {
		c.C = DefaultC
	}
	if c.N == 0 {
		c.N = DefaultN
	}
	if c.Kernel == nil {
		c.Kernel = temporal.NewMatern32()
	}
	if c.MarginalizeOverInclination == nil {
		c.MarginalizeOverInclination = ptr(true)
	}
	if c.Normalized == nil {
		c.Normalized = ptr(true)
	}
	if c.CovPts == 0 {
		c.CovPts = DefaultCovPts
	}
	if c.YDeg == 0 {
		c.YDeg = DefaultYDeg
	}
	if c.NormOrder == 0 {
		c.NormOrder = DefaultNormOrder
	}
	if c.NormZMax == 0 {
		c.NormZMax = DefaultNormZMax
	}
	if c.Eps == 0 {
		c.Eps = DefaultEps
	}
	if c.EpsY == 0 {
		c.EpsY = DefaultEpsY
	}
	if c.EpsY15 == 0 {
		c.EpsY15 = DefaultEpsY15
	}
	return c, nil
}

func ptr[T any](v T) *T { return &v }

// View is the orientation of a particular star: its inclination in
// degrees, rotation period in the units of the time arrays, and limb
// darkening coefficients. The inclination is ignored by processes that
// marginalize over it.
type View struct {
	Inc    float64
	Period float64
	U      []float64
}

// DefaultView returns the default orientation: 60 degrees inclination,
// unit period, no limb darkening.
func DefaultView() View {
	return View{Inc: DefaultInclination, Period: DefaultPeriod}
}

func (v View) validate() error {
	if v.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalidView, v.Period)
	}
	if v.Inc < 0 || v.Inc > 90 {
		return fmt.Errorf("%w: inclination %v degrees out of [0, 90]", ErrInvalidView, v.Inc)
	}
	return nil
}

// Noise is the measurement covariance of a light curve: homoscedastic,
// per-point, or a full matrix.
type Noise struct {
	scalar float64
	diag   []float64
	full   *mat.SymDense
}

// NoiseScalar is a homoscedastic measurement variance.
func NoiseScalar(v float64) Noise {
	return Noise{scalar: v}
}

// NoiseDiag is a per-point measurement variance.
func NoiseDiag(v []float64) Noise {
	return Noise{diag: v}
}

// NoiseFull is a full measurement covariance matrix.
func NoiseFull(c *mat.SymDense) Noise {
	return Noise{full: c}
}

// addTo adds the measurement covariance to c in place.
func (n Noise) addTo(c *mat.SymDense) error {
	k := c.SymmetricDim()
	switch {
	case n.full != nil:
		if n.full.SymmetricDim() != k {
			return fmt.Errorf("%w: covariance is %d x %d, want %d", ErrNoiseSize, n.full.SymmetricDim(), n.full.SymmetricDim(), k)
		}
		c.AddSym(c, n.full)
	case n.diag != nil:
		if len(n.diag) != k {
			return fmt.Errorf("%w: %d variances for %d points", ErrNoiseSize, len(n.diag), k)
		}
		for i, v := range n.diag {
			c.SetSym(i, i, c.At(i, i)+v)
		}
	default:
		for i := 0; i < k; i++ {
			c.SetSym(i, i, c.At(i, i)+n.scalar)
		}
	}
	return nil
}
