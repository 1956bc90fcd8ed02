package process

import (
	"runtime"
	"sync"
)

// LightCurve is one star's observations: times, relative flux, and the
// measurement noise, together with the star's orientation. The view's
// inclination is ignored when the process marginalizes over it.
type LightCurve struct {
	T    []float64
	Flux []float64

	Noise Noise
	View  View

	// BaselineMean and BaselineVar describe the unknown constant offset
	// of this star's photometry.
	BaselineMean float64
	BaselineVar  float64
}

// EnsembleLogLikelihood returns the joint log likelihood of many stars
// sharing the process hyperparameters, the sum of the per-star marginal
// likelihoods. Stars are scored concurrently on nWorkers goroutines;
// nWorkers <= 0 uses one per CPU. Any star scoring -Inf makes the total
// -Inf.
func (p *Process) EnsembleLogLikelihood(curves []LightCurve, nWorkers int) float64 {
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	curveChan := make(chan int, 100)
	defer close(curveChan)
	var wg sync.WaitGroup

	lls := make([]float64, len(curves))
	for i := 0; i < nWorkers; i++ {
		go func() {
			for j := range curveChan {
				c := curves[j]
				lls[j] = p.LogLikelihood(c.T, c.Flux, c.Noise, c.View, c.BaselineMean, c.BaselineVar)
				wg.Done()
			}
		}()
	}
	for j := range curves {
		wg.Add(1)
		curveChan <- j
	}
	wg.Wait()

	total := 0.0
	for _, ll := range lls {
		total += ll
	}
	return total
}
