package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/ionc/internal/ir"
)

// marshalCircuit converts a circuit to JSON TEXT for storage.
// HTML escaping is disabled so gate names and qubit labels are stored as-is.
func marshalCircuit(c *ir.Circuit) (string, error) {
	if c == nil {
		return "", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("marshal circuit: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalCircuit parses JSON TEXT to a circuit. Empty text yields nil.
func unmarshalCircuit(data string) (*ir.Circuit, error) {
	if data == "" {
		return nil, nil
	}
	var c ir.Circuit
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal circuit: %w", err)
	}
	return &c, nil
}

// marshalOptions converts RunOptions to canonical JSON TEXT.
func marshalOptions(opts ir.RunOptions) (string, error) {
	data, err := ir.MarshalCanonical(ir.RunOptionsValue(opts))
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

// unmarshalOptions parses canonical JSON TEXT to RunOptions.
func unmarshalOptions(data string) (ir.RunOptions, error) {
	var raw struct {
		Policy     string `json:"policy"`
		Atol       string `json:"atol"`
		VerifyAtol    string `json:"verify_atol"`
		UnitarityAtol string `json:"unitarity_atol"`
	}
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return ir.RunOptions{}, fmt.Errorf("unmarshal options: %w", err)
	}
	atol, err := strconv.ParseFloat(raw.Atol, 64)
	if err != nil {
		return ir.RunOptions{}, fmt.Errorf("unmarshal options: atol: %w", err)
	}
	verify, err := strconv.ParseFloat(raw.VerifyAtol, 64)
	if err != nil {
		return ir.RunOptions{}, fmt.Errorf("unmarshal options: verify_atol: %w", err)
	}
	opts := ir.RunOptions{Policy: raw.Policy, Atol: atol, VerifyAtol: verify}
	if raw.UnitarityAtol != "" {
		opts.UnitarityAtol, err = strconv.ParseFloat(raw.UnitarityAtol, 64)
		if err != nil {
			return ir.RunOptions{}, fmt.Errorf("unmarshal options: unitarity_atol: %w", err)
		}
	}
	return opts, nil
}
