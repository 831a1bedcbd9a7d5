package gates

import (
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// Kind tags what a converter may do with an operation.
type Kind int

const (
	// Opaque operations expose no unitary.
	Opaque Kind = iota
	// Native operations run on the target as-is.
	Native
	// Synthesizable operations expose a matrix and can be rewritten into
	// native gates.
	Synthesizable
)

func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case Synthesizable:
		return "synthesizable"
	default:
		return "opaque"
	}
}

// Capability is the result of classifying an operation once. Matrix is only
// set when Kind is Synthesizable.
type Capability struct {
	Kind   Kind
	Matrix linalg.Matrix
}

// nativeArity lists the target's native gates and the qubit count each must
// act on. rx is the zero-phase member of phased_x.
var nativeArity = map[string]int{
	RX:      1,
	RY:      1,
	PhasedX: 1,
	MS:      2,
	Measure: AnyArity,
}

// IsNative reports whether op runs on the trapped-ion target without
// rewriting.
func IsNative(op ir.Operation) bool {
	n, ok := nativeArity[op.Gate.Name]
	if !ok || Check(op) != nil {
		return false
	}
	return n == AnyArity || n == len(op.Qubits)
}

// Classify returns the operation's capability: Native, Synthesizable with its
// matrix, or Opaque.
func Classify(op ir.Operation) Capability {
	if IsNative(op) {
		return Capability{Kind: Native}
	}
	if m, ok := Unitary(op); ok {
		return Capability{Kind: Synthesizable, Matrix: m}
	}
	return Capability{Kind: Opaque}
}

// NativeNames returns the native gate names.
func NativeNames() []string {
	return []string{RX, RY, PhasedX, MS, Measure}
}
