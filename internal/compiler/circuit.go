package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/ionc/internal/ir"
)

// OperationSpec is the source form of one operation.
type OperationSpec struct {
	Gate   string        `json:"gate" yaml:"gate"`
	Params []Angle       `json:"params,omitempty" yaml:"params,omitempty"`
	Matrix [][][]float64 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Key    string        `json:"key,omitempty" yaml:"key,omitempty"`
	Qubits []string      `json:"qubits" yaml:"qubits"`
}

// CircuitSpec is the source form of a circuit. Operations are appended in
// order with the earliest-insertion strategy.
type CircuitSpec struct {
	Name string          `json:"name" yaml:"name"`
	Ops  []OperationSpec `json:"ops" yaml:"ops"`
}

// BuildCircuit converts a spec into a circuit. It checks only what is needed
// to build the IR (gate name present, qubits parse, matrix entries are
// [re, im] pairs); gate-level rules are left to Validate.
func BuildCircuit(spec CircuitSpec) (*ir.Circuit, error) {
	c := &ir.Circuit{Name: spec.Name}
	for i, o := range spec.Ops {
		op, err := buildOperation(o)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				ce.Field = fmt.Sprintf("ops[%d].%s", i, ce.Field)
				return nil, ce
			}
			return nil, err
		}
		c.Append(op)
	}
	return c, nil
}

func buildOperation(spec OperationSpec) (ir.Operation, error) {
	if spec.Gate == "" {
		return ir.Operation{}, &CompileError{Field: "gate", Message: "gate is required"}
	}
	if len(spec.Qubits) == 0 {
		return ir.Operation{}, &CompileError{Field: "qubits", Message: "at least one qubit is required"}
	}
	qubits := make([]ir.Qubit, len(spec.Qubits))
	for j, s := range spec.Qubits {
		q, err := ir.ParseQubit(s)
		if err != nil {
			return ir.Operation{}, &CompileError{Field: fmt.Sprintf("qubits[%d]", j), Message: err.Error()}
		}
		qubits[j] = q
	}

	gate := ir.Gate{Name: spec.Gate, Key: spec.Key}
	for _, p := range spec.Params {
		gate.Params = append(gate.Params, float64(p))
	}
	if len(spec.Matrix) > 0 {
		m := make(ir.Matrix, len(spec.Matrix))
		for r, row := range spec.Matrix {
			m[r] = make([]complex128, len(row))
			for col, pair := range row {
				switch len(pair) {
				case 1:
					m[r][col] = complex(pair[0], 0)
				case 2:
					m[r][col] = complex(pair[0], pair[1])
				default:
					return ir.Operation{}, &CompileError{
						Field:   fmt.Sprintf("matrix[%d][%d]", r, col),
						Message: fmt.Sprintf("want [re, im], got %d numbers", len(pair)),
					}
				}
			}
		}
		gate.Matrix = m
	}
	return ir.On(gate, qubits...), nil
}

// SpecFromCircuit converts a circuit back into its source form, flattening
// moments in order.
func SpecFromCircuit(c *ir.Circuit) CircuitSpec {
	spec := CircuitSpec{Name: c.Name, Ops: []OperationSpec{}}
	for _, op := range c.AllOperations() {
		o := OperationSpec{Gate: op.Gate.Name, Key: op.Gate.Key}
		for _, p := range op.Gate.Params {
			o.Params = append(o.Params, Angle(p))
		}
		for _, row := range op.Gate.Matrix {
			out := make([][]float64, len(row))
			for j, v := range row {
				out[j] = []float64{real(v), imag(v)}
			}
			o.Matrix = append(o.Matrix, out)
		}
		for _, q := range op.Qubits {
			o.Qubits = append(o.Qubits, q.String())
		}
		spec.Ops = append(spec.Ops, o)
	}
	return spec
}
