package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/ir"
)

var (
	q0 = ir.LineQubit{X: 0}
	q1 = ir.LineQubit{X: 1}
	q2 = ir.LineQubit{X: 2}
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidCircuit(t *testing.T) {
	c := ir.NewCircuit("ok",
		ir.On(ir.Gate{Name: "h"}, q0),
		ir.On(ir.Gate{Name: "cnot"}, q0, q1),
		ir.On(ir.Gate{Name: "cphase", Params: []float64{0.3}}, q1, q2),
		ir.On(ir.Gate{Name: "measure", Key: "m"}, q0, q1, q2),
	)
	assert.Empty(t, Validate(c))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		ops  []ir.Operation
		want []string
	}{
		{"empty", nil, []string{ErrCircuitEmpty}},
		{"opaque", []ir.Operation{ir.On(ir.Gate{Name: "reset"}, q0)}, []string{ErrOpaqueGate}},
		{"arity", []ir.Operation{ir.On(ir.Gate{Name: "cz"}, q0)}, []string{ErrArityMismatch}},
		{"params", []ir.Operation{ir.On(ir.Gate{Name: "rx"}, q0)}, []string{ErrParamCount}},
		{"repeated", []ir.Operation{ir.On(ir.Gate{Name: "cz"}, q0, q0)}, []string{ErrRepeatedQubit}},
		{"matrix shape", []ir.Operation{ir.On(ir.Gate{Name: "unitary", Matrix: ir.Matrix{{1}}}, q0)}, []string{ErrMatrixShape}},
		{"not unitary", []ir.Operation{ir.On(ir.Gate{Name: "unitary", Matrix: ir.Matrix{{1, 1}, {0, 1}}}, q0)}, []string{ErrMatrixNotUnitary}},
		{"three qubits", []ir.Operation{ir.On(ir.Gate{Name: "ccx"}, q0, q1, q2)}, []string{ErrTooManyQubits}},
		{"mid-circuit measure", []ir.Operation{
			ir.On(ir.Gate{Name: "measure", Key: "m"}, q0),
			ir.On(ir.Gate{Name: "x"}, q0),
		}, []string{ErrMidCircuitMeasure}},
		{"nan", []ir.Operation{ir.On(ir.Gate{Name: "ry", Params: []float64{math.NaN()}}, q0)}, []string{ErrNonFiniteParameter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(ir.NewCircuit(tt.name, tt.ops...))
			assert.Equal(t, tt.want, codes(errs))
		})
	}
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a circuit")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidateNative(t *testing.T) {
	c := ir.NewCircuit("mixed",
		ir.On(ir.Gate{Name: "rx", Params: []float64{1}}, q0),
		ir.On(ir.Gate{Name: "h"}, q1),
		ir.On(ir.Gate{Name: "ms", Params: []float64{math.Pi / 4}}, q0, q1),
		ir.On(ir.Gate{Name: "measure", Key: "m"}, q0),
	)
	errs := ValidateNative(c)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNonNativeGate, errs[0].Code)
	assert.Equal(t, "ops[1]", errs[0].Field)
	assert.Contains(t, errs[0].Message, "h q(1)")
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "ops[0]", Message: "bad", Code: "E120"}
	assert.Equal(t, "[E120] ops[0]: bad", e.Error())
	e.Line = 3
	assert.Equal(t, "[E120] line 3: ops[0]: bad", e.Error())
}
