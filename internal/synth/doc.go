// Package synth rewrites one- and two-qubit unitaries as sequences of
// trapped-ion native gates.
//
// Single-qubit unitaries become at most three operations:
//
//	ry(-a), phased_x(θ, φ), ry(a)
//
// Two-qubit unitaries are split with the KAK decomposition into local
// rotations around at most three Mølmer–Sørensen interactions. Every
// function here is pure: inputs are never modified and results are freshly
// allocated.
package synth
