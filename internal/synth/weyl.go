package synth

import (
	"math"

	"github.com/roach88/ionc/internal/linalg"
)

var (
	pauli = [3]linalg.Matrix{
		linalg.MustFromRows([]complex128{0, 1}, []complex128{1, 0}),
		linalg.MustFromRows([]complex128{0, -1i}, []complex128{1i, 0}),
		linalg.Diag(1, -1),
	}

	// swappers[k] conjugates the two Paulis other than pauli[k] into each
	// other: (Y+Z)/√2, (X+Z)/√2, (X+Y)/√2. Each is Hermitian and unitary.
	swappers = [3]linalg.Matrix{
		pauli[1].Add(pauli[2]).Scale(complex(1/math.Sqrt2, 0)),
		pauli[0].Add(pauli[2]).Scale(complex(1/math.Sqrt2, 0)),
		pauli[0].Add(pauli[1]).Scale(complex(1/math.Sqrt2, 0)),
	}
)

// weyl carries a KAK decomposition through canonicalization. Every move
// rewrites the interaction and compensates in the local factors so the
// product is unchanged up to a scalar; the scalar is recovered afterwards.
type weyl struct {
	v     [3]float64
	left  [2]linalg.Matrix
	right [2]linalg.Matrix
}

// shift adds step·π/2 to coefficient k. exp(iπ/2·PP) = i·P⊗P, so the
// compensation is P^step on both qubits before the interaction.
func (w *weyl) shift(k, step int) {
	w.v[k] += float64(step) * math.Pi / 2
	if step%2 != 0 {
		for q := 0; q < 2; q++ {
			w.right[q] = pauli[k].Mul(w.right[q])
		}
	}
}

// negate flips the sign of coefficients k1 and k2 by conjugating the second
// qubit with the remaining Pauli, which anticommutes with the other two.
func (w *weyl) negate(k1, k2 int) {
	w.v[k1], w.v[k2] = -w.v[k1], -w.v[k2]
	s := pauli[3-k1-k2]
	w.left[1] = w.left[1].Mul(s)
	w.right[1] = s.Mul(w.right[1])
}

// swap exchanges coefficients k1 and k2.
func (w *weyl) swap(k1, k2 int) {
	w.v[k1], w.v[k2] = w.v[k2], w.v[k1]
	s := swappers[3-k1-k2]
	for q := 0; q < 2; q++ {
		w.left[q] = w.left[q].Mul(s)
		w.right[q] = s.Mul(w.right[q])
	}
}

// canonicalShift moves coefficient k into (-π/4, π/4].
func (w *weyl) canonicalShift(k int) {
	for w.v[k] <= -math.Pi/4 {
		w.shift(k, +1)
	}
	for w.v[k] > math.Pi/4 {
		w.shift(k, -1)
	}
}

// sort orders the coefficients by descending magnitude.
func (w *weyl) sort() {
	if math.Abs(w.v[0]) < math.Abs(w.v[1]) {
		w.swap(0, 1)
	}
	if math.Abs(w.v[1]) < math.Abs(w.v[2]) {
		w.swap(1, 2)
	}
	if math.Abs(w.v[0]) < math.Abs(w.v[1]) {
		w.swap(0, 1)
	}
}

// canonicalize maps the interaction into the Weyl chamber. GlobalPhase is
// left for the caller to recompute.
func canonicalize(k KAKDecomposition, atol float64) KAKDecomposition {
	w := &weyl{v: k.Interaction, left: k.After, right: k.Before}

	for i := 0; i < 3; i++ {
		w.canonicalShift(i)
	}
	w.sort()

	// Move all negativity into z.
	if w.v[0] < 0 {
		w.negate(0, 2)
	}
	if w.v[1] < 0 {
		w.negate(1, 2)
	}
	w.canonicalShift(2)

	// On the x = π/4 face, z and -z are equivalent; prefer z ≥ 0.
	if w.v[0] > math.Pi/4-atol && w.v[2] < 0 {
		w.shift(0, -1)
		w.negate(0, 2)
	}

	return KAKDecomposition{
		GlobalPhase: k.GlobalPhase,
		Before:      w.right,
		Interaction: w.v,
		After:       w.left,
	}
}
