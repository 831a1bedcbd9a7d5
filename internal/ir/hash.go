package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCircuit   = "ionc/circuit/v1"
	DomainOperation = "ionc/operation/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OperationValue converts an operation to its canonical value form.
func OperationValue(op Operation) Object {
	gate := Object{"name": Str(op.Gate.Name)}
	if len(op.Gate.Params) > 0 {
		params := make(List, len(op.Gate.Params))
		for i, p := range op.Gate.Params {
			params[i] = Str(FormatParam(p))
		}
		gate["params"] = params
	}
	if len(op.Gate.Matrix) > 0 {
		rows := make(List, len(op.Gate.Matrix))
		for i, row := range op.Gate.Matrix {
			entries := make(List, len(row))
			for j, v := range row {
				entries[j] = List{Str(FormatParam(real(v))), Str(FormatParam(imag(v)))}
			}
			rows[i] = entries
		}
		gate["matrix"] = rows
	}
	if op.Gate.Key != "" {
		gate["key"] = Str(op.Gate.Key)
	}
	qubits := make(List, len(op.Qubits))
	for i, q := range op.Qubits {
		qubits[i] = Str(q.String())
	}
	return Object{"gate": gate, "qubits": qubits}
}

// CircuitValue converts a circuit to its canonical value form. Moment
// boundaries are part of the identity.
func CircuitValue(c *Circuit) Object {
	moments := make(List, len(c.Moments))
	for i, m := range c.Moments {
		ops := make(List, len(m.Operations))
		for j, op := range m.Operations {
			ops[j] = OperationValue(op)
		}
		moments[i] = Object{"operations": ops}
	}
	return Object{
		"name":       Str(c.Name),
		"moments":    moments,
		"ir_version": Str(IRVersion),
	}
}

// OperationHash computes the content-addressed ID of an operation.
func OperationHash(op Operation) (string, error) {
	canonical, err := MarshalCanonical(OperationValue(op))
	if err != nil {
		return "", fmt.Errorf("OperationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOperation, canonical), nil
}

// CircuitHash computes the content-addressed ID of a circuit. Two circuits
// with the same moments and name hash identically across runs and hosts.
func CircuitHash(c *Circuit) (string, error) {
	canonical, err := MarshalCanonical(CircuitValue(c))
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// MustCircuitHash is like CircuitHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCircuitHash(c *Circuit) string {
	h, err := CircuitHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
