package mcmc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaussian(mu, sigma float64) LogProbFunc {
	return func(x []float64) float64 {
		var lp float64
		for _, xi := range x {
			z := (xi - mu) / sigma
			lp -= 0.5 * z * z
		}
		return lp
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, gaussian(0, 1), 1)
	require.ErrorIs(t, err, ErrNoParams)

	_, err = New([]Param{{Name: "x", Min: 1, Max: 1}}, gaussian(0, 1), 1)
	require.Error(t, err)
}

func TestTransform_InBounds(t *testing.T) {
	itf, err := New([]Param{
		{Name: "r", Min: 10, Max: 45},
		{Name: "c", Min: 0, Max: 1},
	}, gaussian(0, 1), 1)
	require.NoError(t, err)

	for _, u := range [][]float64{
		{0, 0}, {5, -5}, {-30, 30}, {700, -700},
	} {
		x := itf.Transform(u)
		assert.Greater(t, x[0], 10.0)
		assert.Less(t, x[0], 45.0)
		assert.GreaterOrEqual(t, x[1], 0.0)
		assert.LessOrEqual(t, x[1], 1.0)
	}

	// The midpoint of the range maps to u = 0.
	mid := itf.Transform([]float64{0, 0})
	assert.InDelta(t, 27.5, mid[0], 1e-12)
	assert.InDelta(t, 0.5, mid[1], 1e-12)
}

func TestTransform_RoundTrip(t *testing.T) {
	itf, err := New([]Param{{Name: "x", Min: -2, Max: 7}}, gaussian(0, 1), 1)
	require.NoError(t, err)
	for _, u := range []float64{-3, -0.5, 0, 1.2, 4} {
		x := itf.Transform([]float64{u})
		back := itf.Untransform(x)
		assert.InDelta(t, u, back[0], 1e-9)
	}
}

func TestLogProb_JacobianKeepsPhysicalPrior(t *testing.T) {
	// With a flat physical log probability, the unconstrained density is
	// exactly the transform Jacobian, which peaks at u = 0.
	itf, err := New([]Param{{Name: "x", Min: 0, Max: 1}},
		func(x []float64) float64 { return 0 }, 1)
	require.NoError(t, err)
	lp0 := itf.LogProb([]float64{0})
	assert.Greater(t, lp0, itf.LogProb([]float64{2}))
	assert.Greater(t, lp0, itf.LogProb([]float64{-2}))
	// log(1/4): the logistic slope at the midpoint.
	assert.InDelta(t, math.Log(0.25), lp0, 1e-12)
}

func TestLogProb_RejectedState(t *testing.T) {
	itf, err := New([]Param{{Name: "x", Min: 0, Max: 1}},
		func(x []float64) float64 { return math.Inf(-1) }, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(itf.LogProb([]float64{0}), -1))
}

func TestOptimize_RecoversMode(t *testing.T) {
	target := 0.3
	itf, err := New([]Param{{Name: "x", Min: 0, Max: 1}},
		func(x []float64) float64 {
			z := (x[0] - target) / 0.05
			return -0.5 * z * z
		}, 1)
	require.NoError(t, err)
	u, lp, err := itf.Optimize()
	require.NoError(t, err)
	x := itf.Transform(u)
	// The Jacobian shifts the mode slightly off the physical optimum.
	assert.InDelta(t, target, x[0], 0.05)
	assert.False(t, math.IsInf(lp, 0))
}

func TestInitialState_Shapes(t *testing.T) {
	itf, err := New([]Param{
		{Name: "x", Min: 0, Max: 1},
		{Name: "y", Min: -5, Max: 5},
	}, gaussian(0.4, 1), 7)
	require.NoError(t, err)

	state, err := itf.InitialState(16)
	require.NoError(t, err)
	r, c := state.Dims()
	require.Equal(t, 16, r)
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.False(t, math.IsNaN(state.At(i, j)))
			require.False(t, math.IsInf(state.At(i, j), 0))
		}
	}

	// Walkers differ from one another.
	assert.NotEqual(t, state.At(0, 0), state.At(1, 0))
}

func TestNames(t *testing.T) {
	itf, err := New([]Param{
		{Name: "r", Min: 10, Max: 45},
		{Name: "mu", Min: 0, Max: 80},
	}, gaussian(0, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "mu"}, itf.Names())
	assert.Equal(t, 2, itf.Dim())
}
