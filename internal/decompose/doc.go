// Package decompose rewrites circuits into the trapped-ion native gate set.
//
// A Converter classifies every operation once (gates.Classify) and then:
//   - passes native operations through unchanged
//   - emits a fixed sequence for gates with a known decomposition (h, cnot)
//   - synthesizes other one- and two-qubit unitaries with package synth
//   - applies its FailurePolicy to everything else
//
// Converters hold only configuration and are safe for concurrent use.
package decompose
