package calibrate

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/ramstojh/starry-process/linalg"
	"github.com/ramstojh/starry-process/process"
)

// Generate draws a synthetic ensemble. Every star shares the spot
// statistics but gets its own inclination, drawn from an isotropic prior,
// and its own surface realization. Light curves are generated
// concurrently, one worker per star, with per-star random streams so the
// dataset is reproducible regardless of scheduling.
func Generate(g Generator) (*Dataset, error) {
	g, err := g.withDefaults()
	if err != nil {
		return nil, err
	}

	// The generating process knows each star's inclination, so it never
	// marginalizes; normalization is applied per draw below.
	p, err := process.New(process.Config{
		R:                          g.Radius,
		DR:                         g.DeltaRadius,
		Mu:                         &g.LatMu,
		Sigma:                      &g.LatSigma,
		C:                          g.Contrast,
		N:                          g.NSpots,
		MarginalizeOverInclination: ptrBool(false),
		Normalized:                 ptrBool(false),
		Seed:                       g.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	g.Logger.Info("generating ensemble",
		zap.Int("nlc", g.NLC),
		zap.Int("npts", g.NPts),
		zap.Float64("radius", g.Radius),
		zap.Float64("lat_mu", g.LatMu),
		zap.Float64("lat_sigma", g.LatSigma),
		zap.Uint64("seed", g.Seed),
	)

	t := make([]float64, g.NPts)
	for i := range t {
		t[i] = g.TMax * float64(i) / float64(g.NPts-1)
	}

	ds := &Dataset{
		T:       t,
		Flux:    make([][]float64, g.NLC),
		Ferr:    g.Ferr,
		Incs:    make([]float64, g.NLC),
		Periods: make([]float64, g.NLC),
		Truth:   g,
	}
	master := rand.New(rand.NewSource(g.Seed))
	for i := 0; i < g.NLC; i++ {
		// Isotropic orientations: cos(i) uniform on [0, 1].
		ds.Incs[i] = math.Acos(master.Float64()) * 180 / math.Pi
		ds.Periods[i] = g.Period
	}

	curveChan := make(chan int, 100)
	defer close(curveChan)
	var wg sync.WaitGroup
	errs := make([]error, g.NLC)

	nWorkers := g.NWorkers
	if nWorkers <= 0 {
		nWorkers = workerDefault()
	}
	for w := 0; w < nWorkers; w++ {
		go func() {
			for i := range curveChan {
				ds.Flux[i], errs[i] = generateOne(p, g, t, ds.Incs[i], ds.Periods[i], g.Seed+uint64(i)+1)
				wg.Done()
			}
		}()
	}
	for i := 0; i < g.NLC; i++ {
		wg.Add(1)
		curveChan <- i
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("calibrate: %w", err)
		}
	}
	g.Logger.Info("ensemble ready", zap.Int("nlc", g.NLC))
	return ds, nil
}

// generateOne draws a single star's light curve from its own random
// stream.
func generateOne(p *process.Process, g Generator, t []float64, inc, period float64, seed uint64) ([]float64, error) {
	view := process.View{Inc: inc, Period: period, U: g.U}
	mean, err := p.Mean(t, view)
	if err != nil {
		return nil, err
	}
	cov, err := p.Cov(t, view)
	if err != nil {
		return nil, err
	}
	chol, ok := linalg.Factor(cov, process.DefaultEps)
	if !ok {
		return nil, process.ErrNotPositiveDefinite
	}

	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, len(t))
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	flx := make([]float64, len(t))
	chol.LowerMulVec(z, flx)
	for i := range flx {
		flx[i] += mean[i]
	}
	if *g.Normalized {
		m := 0.0
		for _, v := range flx {
			m += 1 + v
		}
		m /= float64(len(flx))
		for i := range flx {
			flx[i] = (1+flx[i])/m - 1
		}
	}
	for i := range flx {
		flx[i] += g.Ferr * rng.NormFloat64()
	}
	return flx, nil
}

func ptrBool(v bool) *bool { return &v }
