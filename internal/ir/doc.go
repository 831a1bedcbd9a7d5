// Package ir provides the circuit data model shared by every other package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Operations are values; once built they are never mutated in place
//   - Qubit order inside an Operation is significant (first qubit is the MSB
//     of the gate matrix)
//   - Canonical hashes never encode floats directly; angles are serialized as
//     shortest round-trip decimal strings
//   - All JSON tags use snake_case
package ir
