package linalg

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is returned when a symmetric eigendecomposition fails.
var ErrNoConvergence = errors.New("linalg: eigendecomposition did not converge")

// EigenSym diagonalizes the real symmetric n×n matrix given row-major in sym.
// The input is symmetrized before factorizing. Eigenvalues come back in
// ascending order; vectors holds the matching orthonormal eigenvectors as
// columns, row-major.
func EigenSym(n int, sym []float64) (values, vectors []float64, err error) {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = (sym[i*n+j] + sym[j*n+i]) / 2
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(mat.NewSymDense(n, data), true); !ok {
		return nil, nil, ErrNoConvergence
	}
	values = es.Values(nil)

	var ev mat.Dense
	es.VectorsTo(&ev)
	vectors = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			vectors[i*n+j] = ev.At(i, j)
		}
	}
	return values, vectors, nil
}

// RealDet returns the determinant of the real n×n matrix given row-major.
func RealDet(n int, vals []float64) float64 {
	return mat.Det(mat.NewDense(n, n, append([]float64(nil), vals...)))
}
