package ylm

import "math"

// legendreP fills p with the Legendre polynomials P_0(x) ... P_lmax(x)
// using the Bonnet recurrence.
func legendreP(lmax int, x float64, p []float64) {
	p[0] = 1
	if lmax == 0 {
		return
	}
	p[1] = x
	for l := 2; l <= lmax; l++ {
		fl := float64(l)
		p[l] = ((2*fl-1)*x*p[l-1] - (fl-1)*p[l-2]) / fl
	}
}

// normLegendre fills out with the fully normalized associated Legendre
// functions
//
//	:math:`\bar{P}_l^m(x) = \sqrt{\frac{2l+1}{4\pi}\frac{(l-m)!}{(l+m)!}} P_l^m(x)`
//
// for all 0 <= m <= l <= lmax, stored at out[l*(lmax+1)+m]. The recurrence
// operates directly on the normalized functions, so it is stable for the
// degrees used here.
func normLegendre(lmax int, x float64, out []float64) {
	stride := lmax + 1
	sx := math.Sqrt(math.Max(0, 1-x*x))

	// Diagonal terms \bar{P}_m^m.
	out[0] = 1 / math.Sqrt(4*math.Pi)
	for m := 1; m <= lmax; m++ {
		fm := float64(m)
		out[m*stride+m] = -out[(m-1)*stride+m-1] * sx *
			math.Sqrt((2*fm+1)/(2*fm))
	}

	// First off-diagonal terms \bar{P}_{m+1}^m.
	for m := 0; m < lmax; m++ {
		fm := float64(m)
		out[(m+1)*stride+m] = out[m*stride+m] * x * math.Sqrt(2*fm+3)
	}

	// Remaining terms by upward recurrence in l.
	for m := 0; m <= lmax; m++ {
		for l := m + 2; l <= lmax; l++ {
			fl, fm := float64(l), float64(m)
			alm := math.Sqrt((4*fl*fl - 1) / (fl*fl - fm*fm))
			blm := math.Sqrt(((fl-1)*(fl-1) - fm*fm) / (4*(fl-1)*(fl-1) - 1))
			out[l*stride+m] = alm *
				(x*out[(l-1)*stride+m] - blm*out[(l-2)*stride+m])
		}
	}
}
