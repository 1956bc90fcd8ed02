package flux

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/ramstojh/starry-process/ylm"
)

const ninc = 32

// Marginal holds the flux moments of the process marginalized over the
// stellar inclination under an isotropic prior. The marginal process is
// stationary in rotational phase, so the covariance is computed on a
// uniform grid in phase lag and interpolated with a natural cubic spline;
// the marginal mean is phase independent. The moments do not depend on the
// rotation period, which only enters when times are mapped to phases.
type Marginal struct {
	Mean   float64
	spline interp.NaturalCubic
}

// NewMarginal computes the marginalized moments for a process with the
// given coefficient mean and covariance, limb darkening u, on covpts+1 grid
// points in phase lag.
func (b *Basis) NewMarginal(mean *mat.VecDense, cov *mat.SymDense, u []float64, covpts int) (*Marginal, error) {
	if covpts < 2 {
		return nil, fmt.Errorf("flux: need at least 2 covariance grid points, got %d", covpts)
	}
	n := ylm.Num(b.lmax)

	// Second-moment matrix M = cov + mean mean^T.
	m2 := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m2.Set(i, j, cov.At(i, j)+mean.AtVec(i)*mean.AtVec(j))
		}
	}

	// Isotropic inclination prior: cos(inc) uniform on [0, 1].
	ci := make([]float64, ninc)
	wi := make([]float64, ninc)
	quad.Legendre{}.FixedLocations(ci, wi, 0, 1)

	lags := make([]float64, covpts+1)
	second := make([]float64, covpts+1)
	for g := range lags {
		lags[g] = math.Pi * float64(g) / float64(covpts)
	}

	var meanMarg float64
	q0 := make([]float64, n)
	alag := make([]float64, n)
	for k := 0; k < ninc; k++ {
		s := b.Weights(math.Acos(ci[k]), u)
		// q0 = M . s, so each lag costs a dot product.
		for i := 0; i < n; i++ {
			var acc float64
			for j := 0; j < n; j++ {
				acc += m2.At(i, j) * s[j]
			}
			q0[i] = acc
		}
		var fm float64
		for i := 0; i < n; i++ {
			fm += s[i] * mean.AtVec(i)
		}
		meanMarg += wi[k] * fm
		for g := range lags {
			ylm.RotateZ(b.lmax, lags[g], s, alag)
			var acc float64
			for i := 0; i < n; i++ {
				acc += alag[i] * q0[i]
			}
			second[g] += wi[k] * acc
		}
	}

	covLag := make([]float64, covpts+1)
	for g := range covLag {
		covLag[g] = second[g] - meanMarg*meanMarg
	}
	m := &Marginal{Mean: meanMarg}
	if err := m.spline.Fit(lags, covLag); err != nil {
		return nil, fmt.Errorf("flux: fitting covariance spline: %w", err)
	}
	return m, nil
}

// At evaluates the stationary covariance at a phase lag in radians, folding
// by periodicity and reflection symmetry onto [0, pi].
func (m *Marginal) At(lag float64) float64 {
	lag = math.Mod(math.Abs(lag), 2*math.Pi)
	if lag > math.Pi {
		lag = 2*math.Pi - lag
	}
	return m.spline.Predict(lag)
}

// Cov builds the flux covariance matrix over the given times for rotation
// period p.
func (m *Marginal) Cov(t []float64, p float64) *mat.SymDense {
	out := mat.NewSymDense(len(t), nil)
	for i := range t {
		for j := i; j < len(t); j++ {
			out.SetSym(i, j, m.At(2*math.Pi*(t[i]-t[j])/p))
		}
	}
	return out
}
