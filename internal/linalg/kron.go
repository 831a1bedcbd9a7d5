package linalg

import (
	"errors"
	"math/cmplx"
)

// ErrNotKronProduct is returned when a 4×4 matrix is not a tensor product of
// two 2×2 matrices.
var ErrNotKronProduct = errors.New("linalg: matrix is not a Kronecker product")

// KronFactor splits a 4×4 matrix m into g·(a⊗b) with det(a) = det(b) = 1 and
// Re(g) ≥ 0. The largest-magnitude entry anchors both factors, which keeps the
// extraction well conditioned.
func KronFactor(m Matrix, atol float64) (g complex128, a, b Matrix, err error) {
	if m.n != 4 {
		return 0, Matrix{}, Matrix{}, ErrNotKronProduct
	}
	r, c := 0, 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if cmplx.Abs(m.At(i, j)) > cmplx.Abs(m.At(r, c)) {
				r, c = i, j
			}
		}
	}

	a, b = Zeros(2), Zeros(2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			a.data[((r>>1)^i)*2+((c>>1)^j)] = m.At(r^(i<<1), c^(j<<1))
			b.data[((r&1)^i)*2+((c&1)^j)] = m.At(r^i, c^j)
		}
	}
	a = normalizeDet(a)
	b = normalizeDet(b)

	g = m.At(r, c) / (a.At(r>>1, c>>1) * b.At(r&1, c&1))
	if real(g) < 0 {
		a = a.Scale(-1)
		g = -g
	}
	if !AllClose(Kron(a, b).Scale(g), m, atol) {
		return 0, Matrix{}, Matrix{}, ErrNotKronProduct
	}
	return g, a, b, nil
}

func normalizeDet(m Matrix) Matrix {
	d := m.Det()
	if d == 0 {
		return m
	}
	return m.Scale(1 / cmplx.Sqrt(d))
}
