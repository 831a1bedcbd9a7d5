package decompose

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
	"github.com/roach88/ionc/internal/sim"
	"github.com/roach88/ionc/internal/synth"
)

// Converter rewrites operations into the native gate set.
type Converter struct {
	policy       FailurePolicy
	atol         float64
	unitarityTol float64
	verifyTol    float64 // zero disables verification
	logger       *slog.Logger
}

// roundingTol is the drift from unitarity left to floating-point rounding.
// Matrices beyond it are projected before synthesis.
const roundingTol = 1e-12

// New creates a Converter. Defaults: Fail policy, DefaultTolerance,
// gates.DefaultUnitarityTolerance, no verification, discard logger.
func New(opts ...Option) *Converter {
	c := &Converter{
		policy:       Fail,
		atol:         DefaultTolerance,
		unitarityTol: gates.DefaultUnitarityTolerance,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured failure policy.
func (c *Converter) Policy() FailurePolicy {
	return c.policy
}

// Tolerance returns the synthesis tolerance.
func (c *Converter) Tolerance() float64 {
	return c.atol
}

// UnitarityTolerance returns how far a custom matrix may drift from
// unitarity and still be converted.
func (c *Converter) UnitarityTolerance() float64 {
	return c.unitarityTol
}

// ConvertOne rewrites a single operation. The result is never nil on
// success; an identity gate converts to an empty slice.
func (c *Converter) ConvertOne(op ir.Operation) ([]ir.Operation, error) {
	capability := gates.Classify(op)

	switch capability.Kind {
	case gates.Native:
		c.logger.Debug("native operation", "op", op.String())
		return []ir.Operation{op}, nil

	case gates.Synthesizable:
		u := capability.Matrix
		if !linalg.IsUnitary(u, c.unitarityTol) {
			return c.fail(op, "matrix is not unitary")
		}
		if !linalg.IsUnitary(u, roundingTol) {
			// Approximate matrices are synthesized and verified as their
			// nearest unitary.
			u = linalg.NearestUnitary(u)
		}
		seq, err := c.synthesize(op, u)
		if err != nil {
			var unsupported *UnsupportedOperationError
			if errors.As(err, &unsupported) {
				return c.fail(op, unsupported.Reason)
			}
			return nil, err
		}
		if c.verifyTol > 0 {
			if err := c.verify(op, u, seq); err != nil {
				return nil, err
			}
		}
		c.logger.Debug("converted operation",
			"op", op.String(),
			"emitted", len(seq),
			"entanglers", synth.CountEntanglers(seq))
		return seq, nil

	default:
		return c.fail(op, "operation has no unitary")
	}
}

func (c *Converter) synthesize(op ir.Operation, u linalg.Matrix) ([]ir.Operation, error) {
	if seq, ok := KnownDecomposition(op); ok {
		return seq, nil
	}

	var (
		seq []ir.Operation
		err error
	)
	switch len(op.Qubits) {
	case 1:
		seq, err = synth.SingleQubitOperations(op.Qubits[0], u, c.atol)
	case 2:
		seq, err = synth.TwoQubitOperations(op.Qubits[0], op.Qubits[1], u, c.atol)
	default:
		return nil, &UnsupportedOperationError{
			Op:     op,
			Reason: fmt.Sprintf("acts on %d qubits, only 1 and 2 are supported", len(op.Qubits)),
		}
	}
	switch {
	case errors.Is(err, synth.ErrNotUnitary):
		return nil, &UnsupportedOperationError{Op: op, Reason: "matrix is not unitary"}
	case errors.Is(err, synth.ErrDecompositionFailed):
		return nil, &NumericalToleranceError{Op: op, Tolerance: c.atol, Cause: err}
	case err != nil:
		return nil, fmt.Errorf("synthesize %s: %w", op, err)
	}
	return seq, nil
}

func (c *Converter) fail(op ir.Operation, reason string) ([]ir.Operation, error) {
	if c.policy == PassThrough {
		c.logger.Warn("passing through unsupported operation", "op", op.String(), "reason", reason)
		return []ir.Operation{op}, nil
	}
	return nil, &UnsupportedOperationError{Op: op, Reason: reason}
}

func (c *Converter) verify(op ir.Operation, want linalg.Matrix, seq []ir.Operation) error {
	got, err := sim.Unitary(seq, op.Qubits)
	if err != nil {
		return fmt.Errorf("verify %s: %w", op, err)
	}
	if linalg.AllCloseUpToGlobalPhase(got, want, c.verifyTol) {
		return nil
	}
	residual := linalg.MaxAbsDiff(got, want)
	if p, ok := linalg.GlobalPhase(got, want); ok {
		residual = linalg.MaxAbsDiff(got, want.Scale(p))
	}
	c.logger.Error("verification failed", "op", op.String(), "residual", residual)
	return &NumericalToleranceError{Op: op, Residual: residual, Tolerance: c.verifyTol}
}

// ConvertCircuit converts every operation of c in order and appends the
// results into a new circuit with the same name. c is not modified.
func (c *Converter) ConvertCircuit(circuit *ir.Circuit) (*ir.Circuit, error) {
	out := &ir.Circuit{Name: circuit.Name}
	for _, op := range circuit.AllOperations() {
		seq, err := c.ConvertOne(op)
		if err != nil {
			return nil, err
		}
		out.Append(seq...)
	}
	c.logger.Info("converted circuit",
		"name", circuit.Name,
		"moments_in", len(circuit.Moments),
		"moments_out", len(out.Moments))
	return out, nil
}
