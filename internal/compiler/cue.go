package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/ionc/internal/ir"
)

// CompileCircuit parses a CUE value into a circuit.
// Uses the CUE Go API directly.
//
// The value should be the circuit struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`circuit: bell: { ops: [...] }`)
//	c, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.bell")))
//
// Params may be CUE numbers (including expressions over math.Pi) or
// strings accepted by ParseAngle.
func CompileCircuit(v cue.Value) (*ir.Circuit, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := CircuitSpec{}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	opsVal := v.LookupPath(cue.ParsePath("ops"))
	if !opsVal.Exists() {
		return nil, &CompileError{
			Field:   "ops",
			Message: "ops is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := opsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		op, err := parseOperation(iter.Value())
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				ce.Field = fmt.Sprintf("ops[%d].%s", i, ce.Field)
			}
			return nil, err
		}
		spec.Ops = append(spec.Ops, op)
	}

	c, err := BuildCircuit(spec)
	if err != nil {
		if ce, ok := err.(*CompileError); ok && !ce.Pos.IsValid() {
			ce.Pos = opsVal.Pos()
		}
		return nil, err
	}
	return c, nil
}

func parseOperation(v cue.Value) (OperationSpec, error) {
	var op OperationSpec

	gateVal := v.LookupPath(cue.ParsePath("gate"))
	if !gateVal.Exists() {
		return op, &CompileError{Field: "gate", Message: "gate is required", Pos: v.Pos()}
	}
	gate, err := gateVal.String()
	if err != nil {
		return op, formatCUEError(err)
	}
	op.Gate = gate

	qubitsVal := v.LookupPath(cue.ParsePath("qubits"))
	if !qubitsVal.Exists() {
		return op, &CompileError{Field: "qubits", Message: "qubits is required", Pos: v.Pos()}
	}
	qiter, err := qubitsVal.List()
	if err != nil {
		return op, formatCUEError(err)
	}
	for qiter.Next() {
		q, err := qiter.Value().String()
		if err != nil {
			return op, formatCUEError(err)
		}
		op.Qubits = append(op.Qubits, q)
	}

	if paramsVal := v.LookupPath(cue.ParsePath("params")); paramsVal.Exists() {
		piter, err := paramsVal.List()
		if err != nil {
			return op, formatCUEError(err)
		}
		for j := 0; piter.Next(); j++ {
			a, err := parseCUEAngle(piter.Value())
			if err != nil {
				return op, &CompileError{
					Field:   fmt.Sprintf("params[%d]", j),
					Message: err.Error(),
					Pos:     piter.Value().Pos(),
				}
			}
			op.Params = append(op.Params, a)
		}
	}

	if keyVal := v.LookupPath(cue.ParsePath("key")); keyVal.Exists() {
		key, err := keyVal.String()
		if err != nil {
			return op, formatCUEError(err)
		}
		op.Key = key
	}

	if matrixVal := v.LookupPath(cue.ParsePath("matrix")); matrixVal.Exists() {
		if err := matrixVal.Decode(&op.Matrix); err != nil {
			return op, &CompileError{Field: "matrix", Message: err.Error(), Pos: matrixVal.Pos()}
		}
	}

	return op, nil
}

func parseCUEAngle(v cue.Value) (Angle, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return 0, err
		}
		return ParseAngle(s)
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return Angle(f), nil
	default:
		return 0, fmt.Errorf("angle must be a number or string, got %v", v.IncompleteKind())
	}
}
