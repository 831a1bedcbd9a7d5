package synth

import (
	"fmt"
	"math"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// interactionFrames[k] maps X onto the k-th Pauli by conjugation, so that
// exp(ic·PP) = (F⊗F)·exp(ic·XX)·(F†⊗F†).
var interactionFrames = [3]linalg.Matrix{
	linalg.Identity(2),
	gates.RzMatrix(math.Pi / 2),
	gates.RyMatrix(-math.Pi / 2),
}

// TwoQubitOperations synthesizes a 4×4 unitary on (q0, q1), q0 being the
// most significant qubit of u.
//
// Each interaction coefficient with magnitude at least atol becomes one
// ms(-c). Local rotations between interactions are merged per qubit and
// lowered with SingleQubitOperations. CNOT-class unitaries produce exactly
// one ms, locally equivalent ones none, and any unitary at most three.
func TwoQubitOperations(q0, q1 ir.Qubit, u linalg.Matrix, atol float64) ([]ir.Operation, error) {
	kak, err := KAK(u, atol)
	if err != nil {
		return nil, err
	}
	qs := [2]ir.Qubit{q0, q1}

	var ops []ir.Operation
	emit := func(locals [2]linalg.Matrix) error {
		for q := 0; q < 2; q++ {
			seq, err := SingleQubitOperations(qs[q], locals[q], atol)
			if err != nil {
				return err
			}
			ops = append(ops, seq...)
		}
		return nil
	}

	// exp(i(xXX + yYY + zZZ)) is applied as the z, y, then x terms; the
	// terms commute so the order only fixes the frames between them.
	pending := kak.Before
	for _, k := range []int{2, 1, 0} {
		c := kak.Interaction[k]
		if math.Abs(c) < atol {
			continue
		}
		frame := interactionFrames[k]
		if err := emit([2]linalg.Matrix{frame.Dagger().Mul(pending[0]), frame.Dagger().Mul(pending[1])}); err != nil {
			return nil, err
		}
		ops = append(ops, ir.On(gates.MSGate(-c), q0, q1))
		pending = [2]linalg.Matrix{frame, frame}
	}
	if err := emit([2]linalg.Matrix{kak.After[0].Mul(pending[0]), kak.After[1].Mul(pending[1])}); err != nil {
		return nil, err
	}
	if ops == nil {
		ops = []ir.Operation{}
	}
	return ops, nil
}

// DecomposeTwoQubit rewrites a two-qubit operation into native gates. Only
// operand position matters; the qubit identifiers are carried through.
func DecomposeTwoQubit(op ir.Operation, atol float64) ([]ir.Operation, error) {
	if len(op.Qubits) != 2 {
		return nil, fmt.Errorf("synth: %s acts on %d qubits, want 2", op.Gate.Name, len(op.Qubits))
	}
	u, ok := gates.Unitary(op)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDecomposable, op)
	}
	return TwoQubitOperations(op.Qubits[0], op.Qubits[1], u, atol)
}

// CountEntanglers returns how many ms gates ops contains. Other multi-qubit
// operations, such as a joint measurement, are not entanglers.
func CountEntanglers(ops []ir.Operation) int {
	n := 0
	for _, op := range ops {
		if op.Gate.Name == gates.MS {
			n++
		}
	}
	return n
}
