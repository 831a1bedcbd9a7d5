package decompose

import (
	"errors"
	"fmt"

	"github.com/roach88/ionc/internal/ir"
)

// UnsupportedOperationError is returned under the Fail policy for an
// operation the converter cannot rewrite.
type UnsupportedOperationError struct {
	// Op is the offending operation.
	Op ir.Operation

	// Reason says why it could not be converted.
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %s: %s", e.Op, e.Reason)
}

// NumericalToleranceError is returned when verification finds a synthesized
// sequence that does not reproduce its source. It signals a bug or badly
// conditioned input, never a user error.
type NumericalToleranceError struct {
	Op        ir.Operation
	Residual  float64
	Tolerance float64

	// Cause is set when synthesis itself failed before a residual existed.
	Cause error
}

// Error implements the error interface.
func (e *NumericalToleranceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decomposition of %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("decomposition of %s off by %.3g (tolerance %.3g)", e.Op, e.Residual, e.Tolerance)
}

// Unwrap returns the synthesis failure, if any.
func (e *NumericalToleranceError) Unwrap() error {
	return e.Cause
}

// IsUnsupported reports whether err wraps an *UnsupportedOperationError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedOperationError
	return errors.As(err, &ue)
}

// IsNumerical reports whether err wraps a *NumericalToleranceError.
func IsNumerical(err error) bool {
	var ne *NumericalToleranceError
	return errors.As(err, &ne)
}
