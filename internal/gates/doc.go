// Package gates defines the gate vocabulary understood by ionc: gate names,
// their arity and parameters, their unitaries, and which of them the
// trapped-ion target executes natively.
//
// Matrices follow the big-endian convention: the first qubit of an
// operation is the most significant bit of the basis index.
package gates
