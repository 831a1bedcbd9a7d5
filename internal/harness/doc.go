// Package harness runs conversion scenarios against the engine.
//
// A scenario converts one or more circuits with fixed options and checks
// the resulting runs with assertions. Every scenario executes against a
// fresh in-memory store with a deterministic clock and run IDs, so its
// trace can be compared byte for byte with a golden file.
//
// # Scenario Format
//
//	name: cnot_reference
//	description: "CNOT converts to the reference MS sequence"
//	options:
//	  policy: fail          # fail | pass-through
//	  atol: 1e-8
//	  verify_atol: 1e-6
//	sources:                # circuit files, relative to the scenario
//	  - ../circuits/bell.yaml
//	circuits:               # inline circuits
//	  - name: cnot
//	    ops:
//	      - {gate: cnot, qubits: ["q(0)", "q(1)"]}
//	replay: true            # replay every run after converting
//	assertions:
//	  - type: sequence
//	    circuit: cnot
//	    ops: ["ry(1.570796) q(0)", "ms(0.785398) q(0), q(1)", ...]
//
// # Assertion Types
//
//   - status: the run finished with the given status; error_contains
//     matches a substring of the recorded error
//   - equivalent: output equals input up to global phase (terminal
//     measurements ignored) within atol, default 1e-6
//   - native_only: every output operation is in the native gate set
//   - entangler_count: number of ms gates, exactly (count) or at most (max)
//   - sequence: the output operations, rendered as strings, match ops
//   - replay_matches: every replay reproduced its run (needs replay: true)
//
// An assertion without a circuit applies to every run.
package harness
