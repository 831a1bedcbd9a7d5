package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
	"github.com/roach88/ionc/internal/sim"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Circuit structure errors (E101-E109)
	ErrCircuitEmpty       = "E101" // circuit has no operations
	ErrOpaqueGate         = "E102" // gate name outside the vocabulary
	ErrArityMismatch      = "E103" // wrong qubit count for gate
	ErrParamCount         = "E104" // wrong parameter count for gate
	ErrRepeatedQubit      = "E105" // qubit used twice in one operation
	ErrMatrixShape        = "E106" // custom matrix has the wrong shape
	ErrMatrixNotUnitary   = "E107" // custom matrix is not unitary
	ErrTooManyQubits      = "E108" // unitary on more than two qubits
	ErrMidCircuitMeasure  = "E109" // measurement followed by another operation
	ErrNonFiniteParameter = "E110" // NaN or infinite angle

	// Target errors (E120-E129)
	ErrNonNativeGate = "E120" // operation is not in the native gate set
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a circuit against the gate vocabulary.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch c := v.(type) {
	case *ir.Circuit:
		return validateCircuit(c)
	case ir.Circuit:
		return validateCircuit(&c)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateCircuit(c *ir.Circuit) []ValidationError {
	var errs []ValidationError

	ops := c.AllOperations()
	// E101: at least one operation
	if len(ops) == 0 {
		errs = append(errs, ValidationError{
			Field:   "ops",
			Message: fmt.Sprintf("circuit %q has no operations", c.Name),
			Code:    ErrCircuitEmpty,
		})
	}

	for i, op := range ops {
		errs = append(errs, validateOperation(fmt.Sprintf("ops[%d]", i), op)...)
	}

	// E109: measurements must be terminal
	if _, err := sim.StripTerminalMeasurements(ops); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ops",
			Message: strings.TrimPrefix(err.Error(), "sim: "),
			Code:    ErrMidCircuitMeasure,
		})
	}

	return errs
}

func validateOperation(field string, op ir.Operation) []ValidationError {
	var errs []ValidationError
	name := op.Gate.Name

	// E105: repeated qubit
	seen := make(map[string]bool, len(op.Qubits))
	for _, q := range op.Qubits {
		if seen[q.String()] {
			errs = append(errs, ValidationError{
				Field:   field + ".qubits",
				Message: fmt.Sprintf("qubit %s used twice by %s", q, name),
				Code:    ErrRepeatedQubit,
			})
		}
		seen[q.String()] = true
	}

	// E102: opaque gate
	if !gates.Known(name) {
		errs = append(errs, ValidationError{
			Field:   field + ".gate",
			Message: fmt.Sprintf("unknown gate %q has no unitary; convert with --ignore-failures to keep it", name),
			Code:    ErrOpaqueGate,
		})
		return errs
	}

	// E103: arity
	arity, _ := gates.Arity(name)
	if arity != gates.AnyArity && len(op.Qubits) != arity {
		errs = append(errs, ValidationError{
			Field:   field + ".qubits",
			Message: fmt.Sprintf("%s acts on %d qubits, got %d", name, arity, len(op.Qubits)),
			Code:    ErrArityMismatch,
		})
	}

	// E104, E110: parameters
	nparams, _ := gates.ParamCount(name)
	if len(op.Gate.Params) != nparams {
		errs = append(errs, ValidationError{
			Field:   field + ".params",
			Message: fmt.Sprintf("%s takes %d params, got %d", name, nparams, len(op.Gate.Params)),
			Code:    ErrParamCount,
		})
	}
	for j, p := range op.Gate.Params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.params[%d]", field, j),
				Message: "angle is not finite",
				Code:    ErrNonFiniteParameter,
			})
		}
	}

	// E106, E107: custom matrices
	if name == gates.Custom {
		errs = append(errs, validateMatrix(field, op)...)
	}

	// E108: unitaries beyond two qubits cannot be synthesized
	if name != gates.Measure && len(op.Qubits) > 2 {
		errs = append(errs, ValidationError{
			Field:   field + ".qubits",
			Message: fmt.Sprintf("%s acts on %d qubits; only 1- and 2-qubit unitaries convert", name, len(op.Qubits)),
			Code:    ErrTooManyQubits,
		})
	}

	return errs
}

func validateMatrix(field string, op ir.Operation) []ValidationError {
	want := 1 << len(op.Qubits)
	if op.Gate.Matrix.Dim() != want || !op.Gate.Matrix.Square() {
		return []ValidationError{{
			Field:   field + ".matrix",
			Message: fmt.Sprintf("want %dx%d matrix for %d qubits", want, want, len(op.Qubits)),
			Code:    ErrMatrixShape,
		}}
	}
	m, err := linalg.FromRows(op.Gate.Matrix)
	if err != nil || !linalg.IsUnitary(m, gates.DefaultUnitarityTolerance) {
		return []ValidationError{{
			Field:   field + ".matrix",
			Message: "matrix is not unitary",
			Code:    ErrMatrixNotUnitary,
		}}
	}
	return nil
}

// ValidateNative reports every operation a trapped-ion target cannot run
// as-is. A converted circuit passes with no errors.
func ValidateNative(c *ir.Circuit) []ValidationError {
	var errs []ValidationError
	for i, op := range c.AllOperations() {
		if gates.IsNative(op) {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("ops[%d]", i),
			Message: fmt.Sprintf("%s is not native; expected one of %s", op, strings.Join(gates.NativeNames(), ", ")),
			Code:    ErrNonNativeGate,
		})
	}
	return errs
}
