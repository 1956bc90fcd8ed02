package linalg

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Chol holds the upper Cholesky factor :math:`\mathbf{U}` of a symmetric
// positive definite matrix, :math:`\mathbf{A} = \mathbf{U}^T \mathbf{U}`.
type Chol struct {
	U blas64.Triangular
}

// Factor computes the Cholesky factorization of a after adding jitter to
// its diagonal. The second return value is false if the factorization
// fails, which callers typically map to a log probability of -Inf.
func Factor(a *mat.SymDense, jitter float64) (*Chol, bool) {
	n := a.SymmetricDim()
	sym := blas64.Symmetric{
		N:      n,
		Stride: n,
		Data:   make([]float64, n*n),
		Uplo:   blas.Upper,
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, false
			}
			sym.Data[i*n+j] = v
		}
		sym.Data[i*n+i] += jitter
	}
	if _, ok := lapack64.Potrf(sym); !ok {
		return nil, false
	}
	return &Chol{U: blas64.Triangular{
		N:      n,
		Stride: n,
		Data:   sym.Data,
		Uplo:   blas.Upper,
		Diag:   blas.NonUnit,
	}}, true
}

// SolveVec solves A x = b in place, overwriting b with the solution.
func (c *Chol) SolveVec(b []float64) {
	rhs := blas64.General{
		Rows:   len(b),
		Cols:   1,
		Stride: 1,
		Data:   b,
	}
	// U^T y = b, then U x = y.
	lapack64.Trtrs(blas.Trans, c.U, rhs)
	lapack64.Trtrs(blas.NoTrans, c.U, rhs)
}

// Solve solves A X = B in place, overwriting B with the solution.
func (c *Chol) Solve(b *mat.Dense) {
	r, cols := b.Dims()
	rhs := blas64.General{
		Rows:   r,
		Cols:   cols,
		Stride: b.RawMatrix().Stride,
		Data:   b.RawMatrix().Data,
	}
	lapack64.Trtrs(blas.Trans, c.U, rhs)
	lapack64.Trtrs(blas.NoTrans, c.U, rhs)
}

// LogDet returns the log determinant of the factorized matrix.
func (c *Chol) LogDet() float64 {
	det := 0.0
	for i := 0; i < c.U.N; i++ {
		det += math.Log(c.U.Data[i*c.U.Stride+i])
	}
	return 2 * det
}

// LowerMulVec computes U^T z, i.e. the product of the lower factor with z,
// storing the result in out. This is the map that colors a standard normal
// draw with the factorized covariance.
func (c *Chol) LowerMulVec(z, out []float64) {
	copy(out, z)
	v := blas64.Vector{N: len(out), Inc: 1, Data: out}
	blas64.Trmv(blas.Trans, c.U, v)
}

// UpperSolveVec solves U x = b in place, overwriting b with the solution.
// When the factorized matrix is a precision matrix, this colors a standard
// normal draw with the corresponding covariance.
func (c *Chol) UpperSolveVec(b []float64) {
	rhs := blas64.General{
		Rows:   len(b),
		Cols:   1,
		Stride: 1,
		Data:   b,
	}
	lapack64.Trtrs(blas.NoTrans, c.U, rhs)
}

// Size returns the dimension of the factorized matrix.
func (c *Chol) Size() int {
	return c.U.N
}
