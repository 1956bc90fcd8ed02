package temporal

import (
	"gonum.org/v1/gonum/mat"
)

// Add is the average of several kernels, normalized so that the zero-lag
// variance stays at unity.
type Add struct {
	parts []Kernel
}

func NewAdd(first, second Kernel) *Add {
	parts := make([]Kernel, 0, 2)
	switch first := first.(type) {
	case *Add:
		parts = append(parts, first.parts...)
	default:
		parts = append(parts, first)
	}
	switch second := second.(type) {
	case *Add:
		parts = append(parts, second.parts...)
	default:
		parts = append(parts, second)
	}
	return &Add{parts: parts}
}

func (k *Add) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	out := k.parts[0].Cov(t1, t2, tau)
	for _, part := range k.parts[1:] {
		out.Add(out, part.Cov(t1, t2, tau))
	}
	out.Scale(1/float64(len(k.parts)), out)
	return out
}

// Mul is the elementwise product of several kernels.
type Mul struct {
	parts []Kernel
}

func NewMul(first, second Kernel) *Mul {
	parts := make([]Kernel, 0, 2)
	switch first := first.(type) {
	case *Mul:
		parts = append(parts, first.parts...)
	default:
		parts = append(parts, first)
	}
	switch second := second.(type) {
	case *Mul:
		parts = append(parts, second.parts...)
	default:
		parts = append(parts, second)
	}
	return &Mul{parts: parts}
}

func (k *Mul) Cov(t1, t2 []float64, tau float64) *mat.Dense {
	out := k.parts[0].Cov(t1, t2, tau)
	for _, part := range k.parts[1:] {
		out.MulElem(out, part.Cov(t1, t2, tau))
	}
	return out
}

var (
	add *Add
	mul *Mul
	_   Kernel = add // Check that Add respects the Kernel interface.
	_   Kernel = mul // Check that Mul respects the Kernel interface.
)
