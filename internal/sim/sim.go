// Package sim computes circuit unitaries by dense matrix multiplication and
// compares circuits up to global phase. It is meant for checking converter
// output on small registers, not for simulation at scale.
package sim

import (
	"errors"
	"fmt"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// MaxQubits bounds the register size accepted by Unitary.
const MaxQubits = 10

var (
	// ErrNoUnitary is returned when an operation has no matrix.
	ErrNoUnitary = errors.New("sim: operation has no unitary")

	// ErrTooManyQubits is returned for registers larger than MaxQubits.
	ErrTooManyQubits = errors.New("sim: register too large")

	// ErrMidCircuitMeasurement is returned when a measurement is followed by
	// another operation on one of its qubits.
	ErrMidCircuitMeasurement = errors.New("sim: measurement is not terminal")
)

// Unitary multiplies ops out over the register qubits. qubits[0] is the
// most significant bit. Every operand of every op must appear in qubits.
func Unitary(ops []ir.Operation, qubits []ir.Qubit) (linalg.Matrix, error) {
	if len(qubits) > MaxQubits {
		return linalg.Matrix{}, fmt.Errorf("%w: %d qubits, max %d", ErrTooManyQubits, len(qubits), MaxQubits)
	}
	pos := make(map[string]int, len(qubits))
	for i, q := range qubits {
		pos[q.String()] = i
	}

	acc := linalg.Identity(1 << len(qubits))
	for _, op := range ops {
		m, ok := gates.Unitary(op)
		if !ok {
			return linalg.Matrix{}, fmt.Errorf("%w: %s", ErrNoUnitary, op)
		}
		targets := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			p, ok := pos[q.String()]
			if !ok {
				return linalg.Matrix{}, fmt.Errorf("sim: qubit %s of %s not in register", q, op)
			}
			targets[i] = p
		}
		acc = linalg.Embed(m, targets, len(qubits)).Mul(acc)
	}
	return acc, nil
}

// CircuitUnitary returns the unitary of c over its own sorted qubits, with
// terminal measurements removed.
func CircuitUnitary(c *ir.Circuit) (linalg.Matrix, error) {
	ops, err := StripTerminalMeasurements(c.AllOperations())
	if err != nil {
		return linalg.Matrix{}, err
	}
	return Unitary(ops, c.Qubits())
}

// StripTerminalMeasurements drops measurements that no later operation
// touches. A measurement followed by another operation on one of its qubits
// is an error.
func StripTerminalMeasurements(ops []ir.Operation) ([]ir.Operation, error) {
	measured := make(map[string]bool)
	kept := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		for _, q := range op.Qubits {
			if measured[q.String()] {
				return nil, fmt.Errorf("%w: %s after measuring %s", ErrMidCircuitMeasurement, op, q)
			}
		}
		if op.Gate.Name == gates.Measure {
			for _, q := range op.Qubits {
				measured[q.String()] = true
			}
			continue
		}
		kept = append(kept, op)
	}
	return kept, nil
}

// Equivalent reports whether a and b implement the same unitary up to global
// phase, ignoring terminal measurements. Both are evaluated over the union
// of their qubits.
func Equivalent(a, b *ir.Circuit, atol float64) (bool, error) {
	qubits := unionQubits(a.Qubits(), b.Qubits())
	ua, err := registerUnitary(a, qubits)
	if err != nil {
		return false, fmt.Errorf("first circuit: %w", err)
	}
	ub, err := registerUnitary(b, qubits)
	if err != nil {
		return false, fmt.Errorf("second circuit: %w", err)
	}
	return linalg.AllCloseUpToGlobalPhase(ua, ub, atol), nil
}

func registerUnitary(c *ir.Circuit, qubits []ir.Qubit) (linalg.Matrix, error) {
	ops, err := StripTerminalMeasurements(c.AllOperations())
	if err != nil {
		return linalg.Matrix{}, err
	}
	return Unitary(ops, qubits)
}

func unionQubits(a, b []ir.Qubit) []ir.Qubit {
	seen := make(map[string]bool, len(a)+len(b))
	var out []ir.Qubit
	for _, q := range append(append([]ir.Qubit(nil), a...), b...) {
		if !seen[q.String()] {
			seen[q.String()] = true
			out = append(out, q)
		}
	}
	ir.SortQubits(out)
	return out
}
