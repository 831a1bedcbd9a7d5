package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/compiler"
)

const invalidYAML = `circuits:
  - name: broken
    ops:
      - {gate: cnot, qubits: ["q(0)"]}
      - {gate: rx, qubits: ["q(1)"]}
      - {gate: frobnicate, qubits: ["q(2)"]}
`

const nativeYAML = `circuits:
  - name: native
    ops:
      - {gate: rx, params: ["pi"], qubits: ["q(0)"]}
      - {gate: ms, params: ["pi/4"], qubits: ["q(0)", "q(1)"]}
      - {gate: measure, key: m, qubits: ["q(0)"]}
`

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bell.yaml", bellYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 circuit(s) valid")
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", invalidYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrArityMismatch+" broken.ops[0]")
	assert.Contains(t, out, compiler.ErrParamCount+" broken.ops[1]")
	assert.Contains(t, out, compiler.ErrOpaqueGate+" broken.ops[2]")
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", invalidYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Circuits)
	assert.Len(t, resp.Data.Errors, 3)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrArityMismatch, resp.Error.Code)
}

func TestValidate_Native(t *testing.T) {
	dir := t.TempDir()
	bell := writeFile(t, dir, "bell.yaml", bellYAML)
	native := writeFile(t, dir, "native.yaml", nativeYAML)

	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), native, "--native")
	require.NoError(t, err)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), bell, "--native")
	require.Error(t, err)
	assert.Contains(t, out, compiler.ErrNonNativeGate+" bell.ops[0]")
	assert.Contains(t, out, compiler.ErrNonNativeGate+" bell.ops[1]")
}

func TestValidate_CUEDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "circuits.cue", `package circuits

circuit: bell: ops: [
	{gate: "h", qubits: ["q(0)"]},
	{gate: "cnot", qubits: ["q(0)", "q(1)"]},
]

circuit: rotate: ops: [
	{gate: "rz", params: ["pi/2"], qubits: ["q(0)"]},
]
`)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 circuit(s) valid")
}

func TestValidate_CUECompileErrorsCollected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "circuits.cue", `package circuits

circuit: nogate: ops: [{qubits: ["q(0)"]}]
circuit: noops: {}
circuit: ok: ops: [{gate: "x", qubits: ["q(0)"]}]
`)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, compiler.ErrOpaqueGate+" load")
	assert.Contains(t, out, compiler.ErrCircuitEmpty+" load")
}

func TestValidate_MissingPath(t *testing.T) {
	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/circuits")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
