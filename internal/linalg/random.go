package linalg

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// RandomUnitary samples an n×n unitary from the Haar measure.
//
// Columns of a complex Ginibre matrix are orthonormalized with modified
// Gram-Schmidt. The resulting R factor has a positive real diagonal, which is
// the phase convention that makes the Q factor Haar distributed.
func RandomUnitary(rng *rand.Rand, n int) Matrix {
	cols := make([][]complex128, n)
	for j := range cols {
		cols[j] = make([]complex128, n)
		for i := range cols[j] {
			cols[j][i] = complex(rng.NormFloat64(), rng.NormFloat64()) / complex(math.Sqrt2, 0)
		}
	}
	for j := 0; j < n; j++ {
		for k := 0; k < j; k++ {
			var dot complex128
			for i := 0; i < n; i++ {
				dot += cmplx.Conj(cols[k][i]) * cols[j][i]
			}
			for i := 0; i < n; i++ {
				cols[j][i] -= dot * cols[k][i]
			}
		}
		var norm float64
		for i := 0; i < n; i++ {
			a := cmplx.Abs(cols[j][i])
			norm += a * a
		}
		norm = math.Sqrt(norm)
		for i := 0; i < n; i++ {
			cols[j][i] /= complex(norm, 0)
		}
	}
	m := Zeros(n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			m.data[i*n+j] = cols[j][i]
		}
	}
	return m
}
