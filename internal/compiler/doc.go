// Package compiler turns circuit sources into ir.Circuit values and checks
// them.
//
// Sources come in two shapes that share one schema (CircuitSpec):
//   - CUE: a struct under circuit.<name> with an ops list, compiled with
//     CompileCircuit
//   - YAML or JSON: a CircuitFile document, parsed with ParseYAML/ParseJSON
//
// Validate reports structural problems with E1xx codes; ValidateNative
// reports operations a trapped-ion target cannot run directly.
package compiler
