package moments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramstojh/starry-process/latitude"
	"github.com/ramstojh/starry-process/size"
	"github.com/ramstojh/starry-process/ylm"
)

func testConfig(t *testing.T, lmax int, c, n float64) Config {
	t.Helper()
	sz, err := size.New(20, 0)
	require.NoError(t, err)
	lat, err := latitude.FromShape(0.4, 0.27)
	require.NoError(t, err)
	return Config{
		Size:     sz,
		Latitude: lat,
		Contrast: c,
		NSpots:   n,
		LMax:     lmax,
	}
}

func TestCompute_MeanIsZonal(t *testing.T) {
	mean, _ := Compute(testConfig(t, 8, 0.1, 10))
	for l := 0; l <= 8; l++ {
		for m := -l; m <= l; m++ {
			if m != 0 {
				assert.Zero(t, mean.AtVec(ylm.Index(l, m)), "l=%d m=%d", l, m)
			}
		}
	}
	// The baseline dominates the Y00 term: spots only darken the star.
	assert.Less(t, mean.AtVec(ylm.Index(0, 0)), ylm.Y00Uniform)
	assert.Greater(t, mean.AtVec(ylm.Index(0, 0)), 0.0)
}

func TestCompute_CovBlockSparse(t *testing.T) {
	_, cov := Compute(testConfig(t, 6, 0.1, 10))
	for l := 0; l <= 6; l++ {
		for m := -l; m <= l; m++ {
			for lp := 0; lp <= 6; lp++ {
				for mp := -lp; mp <= lp; mp++ {
					if m != mp {
						assert.Zero(t, cov.At(ylm.Index(l, m), ylm.Index(lp, mp)),
							"l=%d m=%d lp=%d mp=%d", l, m, lp, mp)
					}
				}
			}
		}
	}
}

func TestCompute_DiagonalPositive(t *testing.T) {
	cfg := testConfig(t, 10, 0.1, 10)
	cfg.Eps = 1e-12
	_, cov := Compute(cfg)
	for i := 0; i < ylm.Num(10); i++ {
		assert.Greater(t, cov.At(i, i), 0.0, "i=%d", i)
	}
}

func TestCompute_ContrastAndCountScaling(t *testing.T) {
	lmax := 6
	mean1, cov1 := Compute(testConfig(t, lmax, 0.1, 10))
	mean2, cov2 := Compute(testConfig(t, lmax, 0.2, 10))
	mean3, cov3 := Compute(testConfig(t, lmax, 0.1, 20))

	n := ylm.Num(lmax)
	for i := 0; i < n; i++ {
		d1 := mean1.AtVec(i)
		d2 := mean2.AtVec(i)
		d3 := mean3.AtVec(i)
		if i == ylm.Index(0, 0) {
			d1 -= ylm.Y00Uniform
			d2 -= ylm.Y00Uniform
			d3 -= ylm.Y00Uniform
		}
		// Doubling the contrast or the spot count doubles the spot
		// signal in the mean.
		assert.InDelta(t, 2*d1, d2, 1e-12*math.Max(1, math.Abs(d2)), "i=%d", i)
		assert.InDelta(t, 2*d1, d3, 1e-12*math.Max(1, math.Abs(d3)), "i=%d", i)
		for j := 0; j < n; j++ {
			// The covariance scales as c^2 and linearly in n.
			assert.InDelta(t, 4*cov1.At(i, j), cov2.At(i, j), 1e-12*math.Max(1, math.Abs(cov2.At(i, j))))
			assert.InDelta(t, 2*cov1.At(i, j), cov3.At(i, j), 1e-12*math.Max(1, math.Abs(cov3.At(i, j))))
		}
	}
}

func TestCompute_HighDegreeJitter(t *testing.T) {
	cfg := testConfig(t, 16, 0.1, 10)
	cfg.Eps = 1e-12
	cfg.EpsHigh = 1e-9
	_, cov := Compute(cfg)
	cfg.Eps, cfg.EpsHigh = 0, 0
	_, bare := Compute(cfg)
	i15 := ylm.Index(15, 0)
	i16 := ylm.Index(16, 0)
	assert.InDelta(t, bare.At(i15, i15)+1e-12, cov.At(i15, i15), 1e-15)
	assert.InDelta(t, bare.At(i16, i16)+1e-9+1e-12, cov.At(i16, i16), 1e-15)
}
