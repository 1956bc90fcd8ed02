// Package ylm implements the orthonormal real spherical harmonic basis used
// to represent stellar surface maps, along with the expansions and rotations
// needed to build the moments of the starspot process.
package ylm

import "math"

// Index returns the flat index of the harmonic of degree l and order m.
func Index(l, m int) int {
	return l*(l+1) + m
}

// Num returns the number of coefficients of an expansion up to degree lmax.
func Num(lmax int) int {
	return (lmax + 1) * (lmax + 1)
}

// Eval fills out (length Num(lmax)) with the orthonormal real spherical
// harmonics evaluated at colatitude theta and azimuth phi.
//
// The basis is
//
//	:math:`Y_{lm} = \sqrt{2} \bar{P}_l^m(\cos\theta) \cos(m\phi)` for m > 0,
//	:math:`Y_{l0} = \bar{P}_l^0(\cos\theta)`,
//	:math:`Y_{lm} = \sqrt{2} \bar{P}_l^{|m|}(\cos\theta) \sin(|m|\phi)` for m < 0.
func Eval(lmax int, theta, phi float64, out []float64) {
	stride := lmax + 1
	plm := make([]float64, stride*stride)
	normLegendre(lmax, math.Cos(theta), plm)
	for l := 0; l <= lmax; l++ {
		out[Index(l, 0)] = plm[l*stride]
		for m := 1; m <= l; m++ {
			p := math.Sqrt2 * plm[l*stride+m]
			s, c := math.Sincos(float64(m) * phi)
			out[Index(l, m)] = p * c
			out[Index(l, -m)] = p * s
		}
	}
}

// EvalColat fills out (length Num(lmax)) with the azimuth-independent parts
// of the harmonics at colatitude theta: out[Index(l, m)] is the factor
// multiplying cos(m phi) (m >= 0) or sin(|m| phi) (m < 0) in Eval. Entries
// for m and -m coincide.
func EvalColat(lmax int, theta float64, out []float64) {
	stride := lmax + 1
	plm := make([]float64, stride*stride)
	normLegendre(lmax, math.Cos(theta), plm)
	for l := 0; l <= lmax; l++ {
		out[Index(l, 0)] = plm[l*stride]
		for m := 1; m <= l; m++ {
			p := math.Sqrt2 * plm[l*stride+m]
			out[Index(l, m)] = p
			out[Index(l, -m)] = p
		}
	}
}

// RotateZonalTo expands a zonal profile, given by its per-degree
// coefficients a, about an axis at colatitude theta and azimuth phi. By the
// spherical harmonic addition theorem the rotated coefficients are
//
//	:math:`y_{lm} = a_l \sqrt{\frac{4\pi}{2l+1}} Y_{lm}(\theta, \phi)`.
func RotateZonalTo(a []float64, theta, phi float64, out []float64) {
	lmax := len(a) - 1
	Eval(lmax, theta, phi, out)
	for l := 0; l <= lmax; l++ {
		scale := a[l] * math.Sqrt(4*math.Pi/(2*float64(l)+1))
		for m := -l; m <= l; m++ {
			out[Index(l, m)] *= scale
		}
	}
}

// RotateZ rotates the coefficient vector y by angle alpha about the polar
// axis, storing the result in out. Orders m and -m mix through a 2x2
// rotation by m*alpha; zonal terms are unchanged. The slices y and out must
// not alias.
func RotateZ(lmax int, alpha float64, y, out []float64) {
	for l := 0; l <= lmax; l++ {
		out[Index(l, 0)] = y[Index(l, 0)]
		for m := 1; m <= l; m++ {
			s, c := math.Sincos(float64(m) * alpha)
			yp, yn := y[Index(l, m)], y[Index(l, -m)]
			out[Index(l, m)] = c*yp + s*yn
			out[Index(l, -m)] = -s*yp + c*yn
		}
	}
}
