package synth

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/linalg"
)

// magic is the Bell-like basis in which local two-qubit unitaries are real
// orthogonal and XX, YY, ZZ are diagonal.
var magic = linalg.MustFromRows(
	[]complex128{1, 0, 0, 1i},
	[]complex128{0, 1i, 1, 0},
	[]complex128{0, 1i, -1, 0},
	[]complex128{1, 0, 0, -1i},
).Scale(complex(1/math.Sqrt2, 0))

var magicDag = magic.Dagger()

// Signs of XX, YY, ZZ on each magic basis column.
var magicSigns = [4][3]float64{
	{+1, -1, +1},
	{+1, +1, -1},
	{-1, -1, -1},
	{-1, +1, +1},
}

// maxEigenAttempts bounds the random combinations tried when diagonalizing
// the real and imaginary parts of UᵀU together.
const maxEigenAttempts = 16

// KAKDecomposition expresses a two-qubit unitary as
//
//	U = GlobalPhase · (After[0] ⊗ After[1]) · exp(i(x·XX + y·YY + z·ZZ)) · (Before[0] ⊗ Before[1])
//
// with Interaction = {x, y, z}. Index 0 is the first qubit.
type KAKDecomposition struct {
	GlobalPhase complex128
	Before      [2]linalg.Matrix
	Interaction [3]float64
	After       [2]linalg.Matrix
}

// InteractionMatrix returns exp(i(x·XX + y·YY + z·ZZ)).
func InteractionMatrix(v [3]float64) linalg.Matrix {
	d := make([]complex128, 4)
	for k, s := range magicSigns {
		d[k] = cmplx.Exp(complex(0, s[0]*v[0]+s[1]*v[1]+s[2]*v[2]))
	}
	return linalg.Product(magic, linalg.Diag(d...), magicDag)
}

// Unitary multiplies the decomposition back out.
func (k KAKDecomposition) Unitary() linalg.Matrix {
	return linalg.Product(
		linalg.Kron(k.After[0], k.After[1]),
		InteractionMatrix(k.Interaction),
		linalg.Kron(k.Before[0], k.Before[1]),
	).Scale(k.GlobalPhase)
}

// checkTol is the tolerance for internal consistency checks. It is looser
// than the caller's atol to absorb rounding in the eigensolver.
func checkTol(atol float64) float64 {
	return math.Max(100*atol, 1e-9)
}

// KAK decomposes a 4×4 unitary and canonicalizes the interaction into the
// Weyl chamber: π/4 ≥ x ≥ y ≥ |z|, with z ≥ 0 when x = π/4.
func KAK(u linalg.Matrix, atol float64) (KAKDecomposition, error) {
	if u.Dim() != 4 || !linalg.IsUnitary(u, gates.DefaultUnitarityTolerance) {
		return KAKDecomposition{}, fmt.Errorf("%w: want 4x4 unitary, got %dx%d", ErrNotUnitary, u.Dim(), u.Dim())
	}
	tol := checkTol(atol)

	// Work in SU(4) and the magic basis.
	up := linalg.Product(magicDag, u.Scale(1/cmplx.Pow(u.Det(), 0.25)), magic)

	// up = O1·D·O2 with O1, O2 real orthogonal; O2 diagonalizes upᵀ·up.
	p, d, err := diagonalizeSymmetricUnitary(up.Transpose().Mul(up), tol)
	if err != nil {
		return KAKDecomposition{}, err
	}
	var theta [4]float64
	for k := 0; k < 3; k++ {
		theta[k] = cmplx.Phase(d[k]) / 2
	}
	theta[3] = -(theta[0] + theta[1] + theta[2])

	dinv := make([]complex128, 4)
	for k := range dinv {
		dinv[k] = cmplx.Exp(complex(0, -theta[k]))
	}
	o1 := linalg.Product(up, p, linalg.Diag(dinv...))

	_, a0, a1, err := linalg.KronFactor(linalg.Product(magic, o1, magicDag), tol)
	if err != nil {
		return KAKDecomposition{}, fmt.Errorf("%w: after factor: %v", ErrDecompositionFailed, err)
	}
	_, b0, b1, err := linalg.KronFactor(linalg.Product(magic, p.Transpose(), magicDag), tol)
	if err != nil {
		return KAKDecomposition{}, fmt.Errorf("%w: before factor: %v", ErrDecompositionFailed, err)
	}

	kak := KAKDecomposition{
		GlobalPhase: 1,
		Before:      [2]linalg.Matrix{b0, b1},
		Interaction: [3]float64{
			(theta[0] + theta[1] - theta[2] - theta[3]) / 4,
			(-theta[0] + theta[1] - theta[2] + theta[3]) / 4,
			(theta[0] - theta[1] - theta[2] + theta[3]) / 4,
		},
		After: [2]linalg.Matrix{a0, a1},
	}
	kak = canonicalize(kak, atol)

	recon := kak.Unitary()
	phase, ok := linalg.GlobalPhase(u, recon)
	if !ok || !linalg.AllClose(recon.Scale(phase), u, tol) {
		return KAKDecomposition{}, fmt.Errorf("%w: kak residual %.3g", ErrDecompositionFailed, linalg.MaxAbsDiff(recon.Scale(phase), u))
	}
	kak.GlobalPhase = phase
	return kak, nil
}

// diagonalizeSymmetricUnitary finds a real special orthogonal P with
// Pᵀ·m·P diagonal, for a complex symmetric unitary m whose real and
// imaginary parts commute. A random real combination of the two parts
// shares their eigenvectors; the seed is fixed so results are reproducible.
func diagonalizeSymmetricUnitary(m linalg.Matrix, tol float64) (linalg.Matrix, []complex128, error) {
	re, im := m.Real(), m.Imag()
	rng := rand.New(rand.NewPCG(0x10c, 0x4a4))
	comb := make([]float64, len(re))
	for attempt := 0; attempt < maxEigenAttempts; attempt++ {
		a, b := rng.Float64()+0.5, rng.Float64()+0.5
		for i := range comb {
			comb[i] = a*re[i] + b*im[i]
		}
		_, vecs, err := linalg.EigenSym(4, comb)
		if err != nil {
			continue
		}
		if linalg.RealDet(4, vecs) < 0 {
			for i := 0; i < 4; i++ {
				vecs[i*4] = -vecs[i*4]
			}
		}
		p := linalg.FromReal(4, vecs)
		diag := linalg.Product(p.Transpose(), m, p)
		if !linalg.IsDiagonal(diag, tol) {
			continue
		}
		d := make([]complex128, 4)
		for k := range d {
			d[k] = diag.At(k, k)
		}
		return p, d, nil
	}
	return linalg.Matrix{}, nil, fmt.Errorf("%w: %v", ErrDecompositionFailed, linalg.ErrNoConvergence)
}
