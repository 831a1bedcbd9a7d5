package linalg

import (
	"math"
	"math/cmplx"
)

// AllClose reports whether every entry of a and b differs by at most atol.
func AllClose(a, b Matrix, atol float64) bool {
	if a.n != b.n {
		return false
	}
	for i := range a.data {
		if cmplx.Abs(a.data[i]-b.data[i]) > atol {
			return false
		}
	}
	return true
}

// GlobalPhase returns the unit-modulus p minimizing |a - p·b| at the largest
// entry of b. ok is false when b is zero.
func GlobalPhase(a, b Matrix) (p complex128, ok bool) {
	best := -1
	var bestAbs float64
	for i, v := range b.data {
		if av := cmplx.Abs(v); av > bestAbs {
			best, bestAbs = i, av
		}
	}
	if best < 0 || bestAbs == 0 {
		return 0, false
	}
	ratio := a.data[best] / b.data[best]
	if r := cmplx.Abs(ratio); r > 0 {
		ratio /= complex(r, 0)
	} else {
		return 0, false
	}
	return ratio, true
}

// AllCloseUpToGlobalPhase reports whether a ≈ p·b for some unit-modulus p.
func AllCloseUpToGlobalPhase(a, b Matrix, atol float64) bool {
	if a.n != b.n {
		return false
	}
	p, ok := GlobalPhase(a, b)
	if !ok {
		return AllClose(a, b, atol)
	}
	return AllClose(a, b.Scale(p), atol)
}

// IsUnitary reports whether m·m† ≈ I.
func IsUnitary(m Matrix, atol float64) bool {
	return AllClose(m.Mul(m.Dagger()), Identity(m.n), atol)
}

// NearestUnitary returns the unitary polar factor of m, the unitary closest
// to m in Frobenius norm. It runs the Newton-Schulz iteration
// X ← X·(3I − X†X)/2, which converges when m is already near unitary
// (‖I − m†m‖ < 1). Matrices that are unitary to rounding come back
// unchanged.
func NearestUnitary(m Matrix) Matrix {
	id := Identity(m.n)
	x := m
	for i := 0; i < 50; i++ {
		gram := x.Dagger().Mul(x)
		if MaxAbsDiff(gram, id) < 1e-14 {
			break
		}
		x = x.Mul(id.Scale(3).Sub(gram)).Scale(0.5)
	}
	return x
}

// IsDiagonal reports whether every off-diagonal entry is within atol of zero.
func IsDiagonal(m Matrix, atol float64) bool {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && cmplx.Abs(m.data[i*m.n+j]) > atol {
				return false
			}
		}
	}
	return true
}

// MaxAbsDiff returns the largest entrywise distance between a and b.
func MaxAbsDiff(a, b Matrix) float64 {
	var d float64
	for i := range a.data {
		d = math.Max(d, cmplx.Abs(a.data[i]-b.data[i]))
	}
	return d
}
