package ylm

import "math"

// CapCoeffs fills a (length lmax+1) with the zonal expansion coefficients
// of a unit-depth polar cap of angular radius rho (radians): the expansion
// of the profile that is -1 inside the cap and 0 outside. The integrals of
// the Legendre polynomials over the cap have the closed form
//
//	:math:`\int_{\cos\rho}^{1} P_l(x)\,dx = \frac{P_{l-1}(\cos\rho) - P_{l+1}(\cos\rho)}{2l+1}`.
func CapCoeffs(lmax int, rho float64, a []float64) {
	c := math.Cos(rho)
	p := make([]float64, lmax+2)
	legendreP(lmax+1, c, p)
	a[0] = -2 * math.Pi * (1 - c) / math.Sqrt(4*math.Pi)
	for l := 1; l <= lmax; l++ {
		fl := float64(l)
		norm := math.Sqrt((2*fl + 1) / (4 * math.Pi))
		a[l] = -2 * math.Pi * norm * (p[l-1] - p[l+1]) / (2*fl + 1)
	}
}

// Y00Uniform is the Y00 coefficient of the map with unit intensity
// everywhere.
var Y00Uniform = math.Sqrt(4 * math.Pi)
