package process

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramstojh/starry-process/ylm"
)

// Small degree keeps the tests fast; the default is only needed for
// production accuracy.
func testConfig() Config {
	return Config{YDeg: 8, CovPts: 50, Seed: 42}
}

func TestNew_Defaults(t *testing.T) {
	p, err := New(Config{YDeg: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, p.YDeg())
	assert.Equal(t, ylm.Num(8), p.NYlm())
	assert.True(t, p.Normalized())
	assert.True(t, p.MarginalizeOverInclination())
	a, b := p.Shape()
	assert.InDelta(t, DefaultA, a, 1e-12)
	assert.InDelta(t, DefaultB, b, 1e-12)
}

func TestNew_GaussianLatitude(t *testing.T) {
	cfg := testConfig()
	cfg.Mu = ptr(30.0)
	cfg.Sigma = ptr(5.0)
	p, err := New(cfg)
	require.NoError(t, err)
	mu, sigma := p.LatitudeMode()
	assert.InDelta(t, 30, mu, 0.5)
	assert.InDelta(t, 5, sigma, 0.5)
}

func TestNew_AmbiguousLatitude(t *testing.T) {
	cfg := testConfig()
	cfg.A = ptr(0.4)
	cfg.Mu = ptr(30.0)
	cfg.Sigma = ptr(5.0)
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrAmbiguousLatitude)
}

func TestMean_NormalizedIsZero(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ts := linspace(0, 2, 20)
	mean, err := p.Mean(ts, DefaultView())
	require.NoError(t, err)
	for _, m := range mean {
		assert.Zero(t, m)
	}
}

func TestMean_UnnormalizedIsNegative(t *testing.T) {
	cfg := testConfig()
	cfg.Normalized = ptr(false)
	p, err := New(cfg)
	require.NoError(t, err)
	ts := linspace(0, 1, 10)
	mean, err := p.Mean(ts, DefaultView())
	require.NoError(t, err)
	for _, m := range mean {
		// Spots darken the star.
		assert.Less(t, m, 0.0)
		assert.Greater(t, m, -1.0)
	}
	// The marginal mean is phase independent.
	for i := 1; i < len(mean); i++ {
		assert.InDelta(t, mean[0], mean[i], 1e-14)
	}
}

func TestCov_SymmetricFinite(t *testing.T) {
	for _, marg := range []bool{true, false} {
		cfg := testConfig()
		cfg.MarginalizeOverInclination = ptr(marg)
		p, err := New(cfg)
		require.NoError(t, err)
		ts := linspace(0, 1, 15)
		cov, err := p.Cov(ts, DefaultView())
		require.NoError(t, err)
		for i := range ts {
			assert.Greater(t, cov.At(i, i), 0.0, "marg=%v", marg)
			for j := range ts {
				require.False(t, math.IsNaN(cov.At(i, j)))
				require.False(t, math.IsInf(cov.At(i, j), 0))
			}
		}
	}
}

func TestCov_NormalizationBlowsUpForHugeSpots(t *testing.T) {
	cfg := testConfig()
	cfg.C = 2.0
	cfg.N = 50
	p, err := New(cfg)
	require.NoError(t, err)
	ts := linspace(0, 1, 10)
	cov, err := p.Cov(ts, DefaultView())
	require.NoError(t, err)
	// The series expansion in the variance-to-mean ratio diverges; the
	// covariance degenerates to +Inf, and the log likelihood to -Inf.
	assert.True(t, math.IsInf(cov.At(0, 0), 1))
	ll := p.LogLikelihood(ts, make([]float64, len(ts)), NoiseScalar(1e-6), DefaultView(), 0, 0)
	assert.True(t, math.IsInf(ll, -1))
}

func TestSampleYlm_Deterministic(t *testing.T) {
	p1, err := New(testConfig())
	require.NoError(t, err)
	p2, err := New(testConfig())
	require.NoError(t, err)
	s1 := p1.SampleYlm(3)
	s2 := p2.SampleYlm(3)
	r, c := s1.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, ylm.Num(8), c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.False(t, math.IsNaN(s1.At(i, j)))
			assert.Equal(t, s1.At(i, j), s2.At(i, j))
		}
	}
}

func TestSample_Normalized(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ts := linspace(0, 2, 40)
	s, err := p.Sample(ts, DefaultView(), 5)
	require.NoError(t, err)
	r, c := s.Dims()
	require.Equal(t, 5, r)
	require.Equal(t, len(ts), c)
	for i := 0; i < r; i++ {
		// Each normalized draw has zero sample mean by construction.
		m := 0.0
		for j := 0; j < c; j++ {
			require.False(t, math.IsNaN(s.At(i, j)))
			m += s.At(i, j)
		}
		assert.InDelta(t, 0.0, m/float64(c), 1e-10)
	}
}

func TestSampleYlmTemporal_Shapes(t *testing.T) {
	cfg := testConfig()
	cfg.Tau = 3.0
	p, err := New(cfg)
	require.NoError(t, err)
	ts := []float64{0, 1, 2}
	s, err := p.SampleYlmTemporal(ts, 2)
	require.NoError(t, err)
	r, c := s.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, len(ts)*ylm.Num(8), c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.False(t, math.IsNaN(s.At(i, j)))
		}
	}
}

func TestSampleYlmTemporal_RequiresTimescale(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	_, err = p.SampleYlmTemporal([]float64{0, 1, 2}, 1)
	require.ErrorIs(t, err, ErrNoTimescale)
}

func TestEmptyTimes_Rejected(t *testing.T) {
	cfg := testConfig()
	cfg.Tau = 3.0
	p, err := New(cfg)
	require.NoError(t, err)
	view := DefaultView()
	_, err = p.Mean(nil, view)
	require.ErrorIs(t, err, ErrEmptyTime)
	_, err = p.Cov([]float64{}, view)
	require.ErrorIs(t, err, ErrEmptyTime)
	_, err = p.Sample(nil, view, 1)
	require.ErrorIs(t, err, ErrEmptyTime)
	_, err = p.SampleYlmTemporal(nil, 1)
	require.ErrorIs(t, err, ErrEmptyTime)
	ll := p.LogLikelihood(nil, nil, NoiseScalar(1e-6), view, 0, 0)
	assert.True(t, math.IsInf(ll, -1))
}

func TestConfig_JitterDefaults(t *testing.T) {
	cfg, err := testConfig().withDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultEps, cfg.Eps)
	assert.Equal(t, DefaultEpsY, cfg.EpsY)
	assert.Equal(t, DefaultEpsY15, cfg.EpsY15)
}

func TestConfig_JitterOverrideInflatesDiagonal(t *testing.T) {
	base, err := New(testConfig())
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Eps = 1e-6
	cfg.EpsY = 1e-3
	inflated, err := New(cfg)
	require.NoError(t, err)
	d0 := base.CovYlm().At(2, 2)
	d1 := inflated.CovYlm().At(2, 2)
	assert.InDelta(t, 1e-3-DefaultEpsY, d1-d0, 1e-9)
}

func TestLogLikelihood_Finite(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ts := linspace(0, 2, 30)
	s, err := p.Sample(ts, DefaultView(), 1)
	require.NoError(t, err)
	flx := make([]float64, len(ts))
	for i := range flx {
		flx[i] = s.At(0, i)
	}
	ll := p.LogLikelihood(ts, flx, NoiseScalar(1e-6), DefaultView(), 0, 0)
	assert.False(t, math.IsNaN(ll))
	assert.False(t, math.IsInf(ll, 0))
}

func TestLogLikelihood_PrefersOwnDraws(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ts := linspace(0, 2, 30)
	s, err := p.Sample(ts, DefaultView(), 1)
	require.NoError(t, err)
	flx := make([]float64, len(ts))
	big := make([]float64, len(ts))
	for i := range flx {
		flx[i] = s.At(0, i)
		// Data far outside the process amplitude.
		big[i] = 10 * math.Sin(7*ts[i])
	}
	noise := NoiseScalar(1e-6)
	view := DefaultView()
	assert.Greater(t, p.LogLikelihood(ts, flx, noise, view, 0, 0),
		p.LogLikelihood(ts, big, noise, view, 0, 0))
}

func TestLogLikelihood_LengthMismatch(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ll := p.LogLikelihood([]float64{0, 1}, []float64{0}, NoiseScalar(1), DefaultView(), 0, 0)
	assert.True(t, math.IsInf(ll, -1))
}

func TestEnsembleLogLikelihood_SumsStars(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ts := linspace(0, 2, 20)
	s, err := p.Sample(ts, DefaultView(), 2)
	require.NoError(t, err)
	curves := make([]LightCurve, 2)
	var single float64
	for i := range curves {
		flx := make([]float64, len(ts))
		for j := range flx {
			flx[j] = s.At(i, j)
		}
		curves[i] = LightCurve{T: ts, Flux: flx, Noise: NoiseScalar(1e-6), View: DefaultView()}
		single += p.LogLikelihood(ts, flx, curves[i].Noise, curves[i].View, 0, 0)
	}
	total := p.EnsembleLogLikelihood(curves, 2)
	assert.InDelta(t, single, total, 1e-9)
}

func TestAdd_CombinesPopulations(t *testing.T) {
	cfgA := testConfig()
	cfgA.Mu = ptr(20.0)
	cfgA.Sigma = ptr(5.0)
	a, err := New(cfgA)
	require.NoError(t, err)

	cfgB := testConfig()
	cfgB.Mu = ptr(65.0)
	cfgB.Sigma = ptr(5.0)
	b, err := New(cfgB)
	require.NoError(t, err)

	sum, err := Add(a, b)
	require.NoError(t, err)

	// One baseline, two spot signals.
	i0 := ylm.Index(0, 0)
	assert.InDelta(t,
		a.MeanYlm().AtVec(i0)+b.MeanYlm().AtVec(i0)-ylm.Y00Uniform,
		sum.MeanYlm().AtVec(i0), 1e-12)
	assert.InDelta(t,
		a.CovYlm().At(2, 2)+b.CovYlm().At(2, 2),
		sum.CovYlm().At(2, 2), 1e-12)

	// Jacobians accumulate over the populations.
	assert.InDelta(t, a.LogJacobian()+b.LogJacobian(), sum.LogJacobian(), 1e-9)
}

func TestAdd_RejectsMismatch(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	cfg := testConfig()
	cfg.YDeg = 6
	b, err := New(cfg)
	require.NoError(t, err)
	_, err = Add(a, b)
	require.ErrorIs(t, err, ErrIncompatibleSum)

	cfg = testConfig()
	cfg.Normalized = ptr(false)
	c, err := New(cfg)
	require.NoError(t, err)
	_, err = Add(a, c)
	require.ErrorIs(t, err, ErrIncompatibleSum)
}

func TestSampleYlmConditional_RequiresStaticKnownInclination(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	_, err = p.SampleYlmConditional(nil, nil, NoiseScalar(1), DefaultView(), 0, 0, 1)
	require.ErrorIs(t, err, ErrConditionalMarginalized)

	cfg := testConfig()
	cfg.MarginalizeOverInclination = ptr(false)
	p, err = New(cfg)
	require.NoError(t, err)
	_, err = p.SampleYlmConditional(nil, nil, NoiseScalar(1), DefaultView(), 0, 0, 1)
	require.ErrorIs(t, err, ErrConditionalNormalized)
}

func TestSampleYlmConditional_ShrinksTowardData(t *testing.T) {
	cfg := testConfig()
	cfg.MarginalizeOverInclination = ptr(false)
	cfg.Normalized = ptr(false)
	p, err := New(cfg)
	require.NoError(t, err)

	ts := linspace(0, 1, 25)
	view := DefaultView()
	s, err := p.Sample(ts, view, 1)
	require.NoError(t, err)
	flx := make([]float64, len(ts))
	for i := range flx {
		flx[i] = s.At(0, i)
	}
	draws, err := p.SampleYlmConditional(ts, flx, NoiseScalar(1e-8), view, 0, 0, 4)
	require.NoError(t, err)
	r, c := draws.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, p.NYlm(), c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.False(t, math.IsNaN(draws.At(i, j)))
		}
	}
}

func TestView_Validation(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	_, err = p.Cov([]float64{0, 1}, View{Inc: 60, Period: 0})
	require.ErrorIs(t, err, ErrInvalidView)
	_, err = p.Cov([]float64{0, 1}, View{Inc: 120, Period: 1})
	require.ErrorIs(t, err, ErrInvalidView)
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
