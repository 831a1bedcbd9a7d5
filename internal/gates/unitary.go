package gates

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// AnyArity marks gates that accept any positive number of qubits.
const AnyArity = 0

type entry struct {
	qubits int
	params int
	matrix func(p []float64) linalg.Matrix
}

var (
	mPauliX = linalg.MustFromRows([]complex128{0, 1}, []complex128{1, 0})
	mPauliY = linalg.MustFromRows([]complex128{0, -1i}, []complex128{1i, 0})
	mPauliZ = linalg.Diag(1, -1)
)

func constant(m linalg.Matrix) func([]float64) linalg.Matrix {
	return func([]float64) linalg.Matrix { return m }
}

var vocabulary = map[string]entry{
	I:   {1, 0, constant(linalg.Identity(2))},
	X:   {1, 0, constant(mPauliX)},
	Y:   {1, 0, constant(mPauliY)},
	Z:   {1, 0, constant(mPauliZ)},
	H:   {1, 0, constant(linalg.MustFromRows([]complex128{1, 1}, []complex128{1, -1}).Scale(complex(1/math.Sqrt2, 0)))},
	S:   {1, 0, constant(linalg.Diag(1, 1i))},
	Sdg: {1, 0, constant(linalg.Diag(1, -1i))},
	T:   {1, 0, constant(linalg.Diag(1, cmplx.Exp(complex(0, math.Pi/4))))},
	Tdg: {1, 0, constant(linalg.Diag(1, cmplx.Exp(complex(0, -math.Pi/4))))},
	RX:  {1, 1, func(p []float64) linalg.Matrix { return RxMatrix(p[0]) }},
	RY:  {1, 1, func(p []float64) linalg.Matrix { return RyMatrix(p[0]) }},
	RZ:  {1, 1, func(p []float64) linalg.Matrix { return RzMatrix(p[0]) }},
	PhasedX: {1, 2, func(p []float64) linalg.Matrix {
		return PhasedXMatrix(p[0], p[1])
	}},
	CNOT:  {2, 0, constant(cnotMatrix)},
	CX:    {2, 0, constant(cnotMatrix)},
	CZ:    {2, 0, constant(linalg.Diag(1, 1, 1, -1))},
	SWAP:  {2, 0, constant(linalg.MustFromRows([]complex128{1, 0, 0, 0}, []complex128{0, 0, 1, 0}, []complex128{0, 1, 0, 0}, []complex128{0, 0, 0, 1}))},
	ISWAP: {2, 0, constant(linalg.MustFromRows([]complex128{1, 0, 0, 0}, []complex128{0, 0, 1i, 0}, []complex128{0, 1i, 0, 0}, []complex128{0, 0, 0, 1}))},
	CPhase: {2, 1, func(p []float64) linalg.Matrix {
		return linalg.Diag(1, 1, 1, cmplx.Exp(complex(0, p[0])))
	}},
	MS:  {2, 1, func(p []float64) linalg.Matrix { return MSMatrix(p[0]) }},
	CCX: {3, 0, constant(ccxMatrix())},
	// Custom unitaries carry their own matrix; measurement has none.
	Custom:  {AnyArity, 0, nil},
	Measure: {AnyArity, 0, nil},
}

var cnotMatrix = linalg.MustFromRows(
	[]complex128{1, 0, 0, 0},
	[]complex128{0, 1, 0, 0},
	[]complex128{0, 0, 0, 1},
	[]complex128{0, 0, 1, 0},
)

func ccxMatrix() linalg.Matrix {
	m := linalg.Identity(8)
	rows := m.Rows()
	rows[6], rows[7] = rows[7], rows[6]
	out, _ := linalg.FromRows(rows)
	return out
}

// RxMatrix returns exp(-iθX/2).
func RxMatrix(theta float64) linalg.Matrix {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return linalg.MustFromRows(
		[]complex128{complex(c, 0), complex(0, -s)},
		[]complex128{complex(0, -s), complex(c, 0)},
	)
}

// RyMatrix returns exp(-iθY/2).
func RyMatrix(theta float64) linalg.Matrix {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return linalg.MustFromRows(
		[]complex128{complex(c, 0), complex(-s, 0)},
		[]complex128{complex(s, 0), complex(c, 0)},
	)
}

// RzMatrix returns exp(-iθZ/2).
func RzMatrix(theta float64) linalg.Matrix {
	return linalg.Diag(cmplx.Exp(complex(0, -theta/2)), cmplx.Exp(complex(0, theta/2)))
}

// PhasedXMatrix returns Rz(φ)·Rx(θ)·Rz(-φ).
func PhasedXMatrix(theta, phi float64) linalg.Matrix {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return linalg.MustFromRows(
		[]complex128{complex(c, 0), complex(0, -s) * cmplx.Exp(complex(0, -phi))},
		[]complex128{complex(0, -s) * cmplx.Exp(complex(0, phi)), complex(c, 0)},
	)
}

// MSMatrix returns exp(-iθ·XX) = cos θ·I - i sin θ·XX.
func MSMatrix(theta float64) linalg.Matrix {
	c, s := complex(math.Cos(theta), 0), complex(0, -math.Sin(theta))
	return linalg.MustFromRows(
		[]complex128{c, 0, 0, s},
		[]complex128{0, c, s, 0},
		[]complex128{0, s, c, 0},
		[]complex128{s, 0, 0, c},
	)
}

// Known reports whether name is part of the vocabulary.
func Known(name string) bool {
	_, ok := vocabulary[name]
	return ok
}

// Arity returns the qubit count a gate requires, AnyArity for gates that
// accept any count, and false for unknown names.
func Arity(name string) (int, bool) {
	e, ok := vocabulary[name]
	return e.qubits, ok
}

// ParamCount returns how many angle parameters a known gate takes.
func ParamCount(name string) (int, bool) {
	e, ok := vocabulary[name]
	return e.params, ok
}

// Check reports a shape error for a known gate: wrong qubit count, wrong
// parameter count, a malformed custom matrix, or a repeated qubit. Unknown
// gate names pass; they are opaque, not malformed.
func Check(op ir.Operation) error {
	if len(op.Qubits) == 0 {
		return fmt.Errorf("%s: no qubits", op.Gate.Name)
	}
	for i := range op.Qubits {
		for j := i + 1; j < len(op.Qubits); j++ {
			if ir.CompareQubits(op.Qubits[i], op.Qubits[j]) == 0 {
				return fmt.Errorf("%s: qubit %s repeated", op.Gate.Name, op.Qubits[i])
			}
		}
	}
	e, ok := vocabulary[op.Gate.Name]
	if !ok {
		return nil
	}
	if e.qubits != AnyArity && len(op.Qubits) != e.qubits {
		return fmt.Errorf("%s: want %d qubits, got %d", op.Gate.Name, e.qubits, len(op.Qubits))
	}
	if len(op.Gate.Params) != e.params {
		return fmt.Errorf("%s: want %d params, got %d", op.Gate.Name, e.params, len(op.Gate.Params))
	}
	for i, p := range op.Gate.Params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%s: param %d is not finite", op.Gate.Name, i)
		}
	}
	if op.Gate.Name == Custom {
		want := 1 << len(op.Qubits)
		if op.Gate.Matrix.Dim() != want || !op.Gate.Matrix.Square() {
			return fmt.Errorf("%s: want %dx%d matrix for %d qubits", op.Gate.Name, want, want, len(op.Qubits))
		}
	}
	return nil
}

// Unitary returns the matrix of op's gate. It reports false for measurement,
// unknown gates, and malformed operations.
func Unitary(op ir.Operation) (linalg.Matrix, bool) {
	if Check(op) != nil {
		return linalg.Matrix{}, false
	}
	e, ok := vocabulary[op.Gate.Name]
	if !ok {
		return linalg.Matrix{}, false
	}
	if op.Gate.Name == Custom {
		m, err := linalg.FromRows(op.Gate.Matrix)
		if err != nil {
			return linalg.Matrix{}, false
		}
		return m, true
	}
	if e.matrix == nil {
		return linalg.Matrix{}, false
	}
	return e.matrix(op.Gate.Params), true
}
