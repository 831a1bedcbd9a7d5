package decompose

import (
	"math"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
)

// known maps gate names to fixed native sequences. They are exact and
// shorter than what synthesis would produce.
var known = map[string]func(qs []ir.Qubit) []ir.Operation{
	gates.H:    hadamard,
	gates.CNOT: cnot,
	gates.CX:   cnot,
}

// hadamard is Ry(-π/2)·Rx(π), equal to H up to phase.
func hadamard(qs []ir.Qubit) []ir.Operation {
	return []ir.Operation{
		ir.On(gates.Rx(math.Pi), qs[0]),
		ir.On(gates.Ry(-math.Pi/2), qs[0]),
	}
}

// cnot uses a single MS interaction with the control on qs[0].
func cnot(qs []ir.Qubit) []ir.Operation {
	a, b := qs[0], qs[1]
	return []ir.Operation{
		ir.On(gates.Ry(math.Pi/2), a),
		ir.On(gates.MSGate(math.Pi/4), a, b),
		ir.On(gates.Rx(-math.Pi/2), a),
		ir.On(gates.Rx(-math.Pi/2), b),
		ir.On(gates.Ry(-math.Pi/2), a),
	}
}

// KnownDecomposition returns the fixed sequence for op, if its gate has one.
func KnownDecomposition(op ir.Operation) ([]ir.Operation, bool) {
	f, ok := known[op.Gate.Name]
	if !ok || gates.Check(op) != nil {
		return nil, false
	}
	return f(op.Qubits), true
}
