package synth

import "errors"

var (
	// ErrNotDecomposable is returned for operations that expose no unitary.
	ErrNotDecomposable = errors.New("synth: operation has no unitary")

	// ErrNotUnitary is returned when a matrix has the wrong shape or is not
	// unitary within tolerance.
	ErrNotUnitary = errors.New("synth: matrix is not unitary")

	// ErrDecompositionFailed is returned when a factorization does not
	// reproduce its input. It indicates a numerical problem, not bad input.
	ErrDecompositionFailed = errors.New("synth: decomposition did not reproduce input")
)
