package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

var (
	qa = ir.LineQubit{X: 0}
	qb = ir.LineQubit{X: 1}
)

// sequenceUnitary multiplies ops out on the register qubits, first qubit
// most significant.
func sequenceUnitary(t *testing.T, ops []ir.Operation, qubits ...ir.Qubit) linalg.Matrix {
	t.Helper()
	pos := make(map[string]int, len(qubits))
	for i, q := range qubits {
		pos[q.String()] = i
	}
	acc := linalg.Identity(1 << len(qubits))
	for _, op := range ops {
		m, ok := gates.Unitary(op)
		require.True(t, ok, "no unitary for %s", op)
		targets := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			p, ok := pos[q.String()]
			require.True(t, ok, "qubit %s not in register", q)
			targets[i] = p
		}
		acc = linalg.Embed(m, targets, len(qubits)).Mul(acc)
	}
	return acc
}

func requireAllNative(t *testing.T, ops []ir.Operation) {
	t.Helper()
	for _, op := range ops {
		require.True(t, gates.IsNative(op), "not native: %s", op)
	}
}
