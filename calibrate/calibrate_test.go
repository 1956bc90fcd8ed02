package calibrate

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramstojh/starry-process/process"
)

func smallGenerator() Generator {
	return Generator{
		Radius:   20,
		LatMu:    30,
		LatSigma: 5,
		NLC:      3,
		NPts:     40,
		TMax:     2,
		Ferr:     1e-3,
		Seed:     11,
	}
}

func TestGenerate_Shapes(t *testing.T) {
	ds, err := Generate(smallGenerator())
	require.NoError(t, err)

	require.Len(t, ds.T, 40)
	require.Len(t, ds.Flux, 3)
	require.Len(t, ds.Incs, 3)
	require.Len(t, ds.Periods, 3)
	assert.Equal(t, 0.0, ds.T[0])
	assert.Equal(t, 2.0, ds.T[len(ds.T)-1])

	for i, flx := range ds.Flux {
		require.Len(t, flx, 40)
		for _, f := range flx {
			require.False(t, math.IsNaN(f))
			// Relative flux stays close to the baseline.
			require.Less(t, math.Abs(f), 1.0)
		}
		assert.Greater(t, ds.Incs[i], 0.0)
		assert.Less(t, ds.Incs[i], 90.0)
		assert.Equal(t, 1.0, ds.Periods[i])
	}
}

func TestGenerate_NormalizedDrawsHaveZeroMean(t *testing.T) {
	g := smallGenerator()
	g.Ferr = 1e-12
	ds, err := Generate(g)
	require.NoError(t, err)
	for _, flx := range ds.Flux {
		m := 0.0
		for _, f := range flx {
			m += f
		}
		assert.InDelta(t, 0.0, m/float64(len(flx)), 1e-8)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	g := smallGenerator()
	g.NWorkers = 4
	a, err := Generate(g)
	require.NoError(t, err)
	g.NWorkers = 1
	b, err := Generate(g)
	require.NoError(t, err)

	// Same seed gives the same dataset regardless of scheduling.
	require.Equal(t, a.Incs, b.Incs)
	for i := range a.Flux {
		require.Equal(t, a.Flux[i], b.Flux[i], "star %d", i)
	}

	g.Seed = 12
	c, err := Generate(g)
	require.NoError(t, err)
	assert.NotEqual(t, a.Flux[0], c.Flux[0])
}

func TestDataset_SaveLoadRoundTrip(t *testing.T) {
	ds, err := Generate(smallGenerator())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, ds.Save(path))
	back, err := LoadDataset(path)
	require.NoError(t, err)

	require.Len(t, back.Flux, len(ds.Flux))
	assert.Equal(t, ds.Truth.Radius, back.Truth.Radius)
	assert.Equal(t, ds.Truth.Seed, back.Truth.Seed)
	assert.InDelta(t, ds.Flux[1][5], back.Flux[1][5], 1e-9)
	assert.InDelta(t, ds.Incs[2], back.Incs[2], 1e-9)
}

func TestDataset_Curves(t *testing.T) {
	ds, err := Generate(smallGenerator())
	require.NoError(t, err)
	curves := ds.Curves()
	require.Len(t, curves, 3)
	for i, c := range curves {
		assert.Equal(t, ds.T, c.T)
		assert.Equal(t, ds.Flux[i], c.Flux)
		assert.Equal(t, ds.Incs[i], c.View.Inc)
	}
}

// A grossly mis-scaled model scores far below the generating parameters
// on its own ensemble.
func TestGenerate_TruthBeatsMisscaledModel(t *testing.T) {
	g := smallGenerator()
	g.NLC = 4
	g.NPts = 80
	ds, err := Generate(g)
	require.NoError(t, err)
	curves := ds.Curves()

	truth, err := process.New(process.Config{
		R:     g.Radius,
		Mu:    &g.LatMu,
		Sigma: &g.LatSigma,
	})
	require.NoError(t, err)

	// Ten times the spot contrast inflates the model variance a
	// hundredfold.
	loud, err := process.New(process.Config{
		R:     g.Radius,
		Mu:    &g.LatMu,
		Sigma: &g.LatSigma,
		C:     1.0,
	})
	require.NoError(t, err)

	llTruth := truth.EnsembleLogLikelihood(curves, 2)
	llLoud := loud.EnsembleLogLikelihood(curves, 2)
	require.False(t, math.IsInf(llTruth, 0))
	assert.Greater(t, llTruth, llLoud)
}

func TestGenerator_Defaults(t *testing.T) {
	g, err := Generator{}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 20.0, g.Radius)
	assert.Equal(t, 10, g.NLC)
	assert.Equal(t, 1000, g.NPts)
	assert.True(t, *g.Normalized)

	_, err = Generator{LatMu: 30, LatSigma: -1}.withDefaults()
	require.Error(t, err)
}
