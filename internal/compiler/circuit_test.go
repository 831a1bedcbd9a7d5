package compiler

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/ir"
)

func TestCompileCircuitBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		circuit: bell: {
			ops: [
				{gate: "h", qubits: ["q(0)"]},
				{gate: "cnot", qubits: ["q(0)", "q(1)"]},
				{gate: "rx", params: [1.5707963267948966], qubits: ["q(1)"]},
				{gate: "ry", params: ["-pi/4"], qubits: ["q(0)"]},
				{gate: "unitary", matrix: [[[0, 0], [1, 0]], [[1, 0], [0, 0]]], qubits: ["anc"]},
				{gate: "measure", key: "m", qubits: ["q(0)", "q(1)"]},
			]
		}
	`)
	require.NoError(t, v.Err())

	c, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.bell")))
	require.NoError(t, err)

	assert.Equal(t, "bell", c.Name)
	ops := c.AllOperations()
	require.Len(t, ops, 6)

	// Operations land in the earliest moment free on their qubits, so the
	// ancilla gate shares the first moment with h.
	require.Len(t, c.Moments, 4)
	assert.Equal(t, []string{"h q(0)", "unitary anc"}, momentGates(c.Moments[0]))
	assert.Equal(t, []string{"cnot q(0), q(1)"}, momentGates(c.Moments[1]))

	assert.InDelta(t, math.Pi/2, opNamed(t, ops, "rx").Gate.Params[0], 1e-12)
	assert.InDelta(t, -math.Pi/4, opNamed(t, ops, "ry").Gate.Params[0], 1e-12)
	custom := opNamed(t, ops, "unitary")
	assert.Equal(t, ir.NamedQubit{Name: "anc"}, custom.Qubits[0])
	assert.Equal(t, complex(1, 0), custom.Gate.Matrix[0][1])
	assert.Equal(t, "m", opNamed(t, ops, "measure").Gate.Key)
}

// opNamed returns the single operation with the given gate name.
func opNamed(t *testing.T, ops []ir.Operation, name string) ir.Operation {
	t.Helper()
	var found []ir.Operation
	for _, op := range ops {
		if op.Gate.Name == name {
			found = append(found, op)
		}
	}
	require.Len(t, found, 1, "operations named %s", name)
	return found[0]
}

// momentGates returns the gate name and qubits of each operation in m.
func momentGates(m ir.Moment) []string {
	out := make([]string, len(m.Operations))
	for i, op := range m.Operations {
		qs := make([]string, len(op.Qubits))
		for j, q := range op.Qubits {
			qs[j] = q.String()
		}
		out[i] = op.Gate.Name + " " + strings.Join(qs, ", ")
	}
	return out
}

func TestCompileCircuitMissingOps(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`circuit: empty: {name: "x"}`)
	require.NoError(t, v.Err())

	_, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.empty")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ops", ce.Field)
}

func TestCompileCircuitMissingGate(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`circuit: bad: ops: [{gate: "x", qubits: ["q(0)"]}, {qubits: ["q(1)"]}]`)
	require.NoError(t, v.Err())

	_, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ops[1].gate", ce.Field)
}

func TestCompileCircuitBadAngle(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`circuit: bad: ops: [{gate: "rx", params: ["tau"], qubits: ["q(0)"]}]`)
	require.NoError(t, v.Err())

	_, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ops[0].params[0]", ce.Field)
	assert.Contains(t, ce.Message, "invalid angle")
}

func TestBuildCircuitErrors(t *testing.T) {
	tests := []struct {
		name  string
		spec  CircuitSpec
		field string
	}{
		{"no qubits", CircuitSpec{Ops: []OperationSpec{{Gate: "x"}}}, "ops[0].qubits"},
		{"empty qubit", CircuitSpec{Ops: []OperationSpec{{Gate: "x", Qubits: []string{""}}}}, "ops[0].qubits[0]"},
		{"bad pair", CircuitSpec{Ops: []OperationSpec{{Gate: "unitary", Qubits: []string{"q(0)"}, Matrix: [][][]float64{{{1, 2, 3}}}}}}, "ops[0].matrix[0][0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCircuit(tt.spec)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
circuits:
  - name: clifford
    ops:
      - {gate: x, qubits: ["q(0)"]}
      - {gate: h, qubits: ["q(1)"]}
      - {gate: ms, params: [pi/4], qubits: ["q(0)", "q(1)"]}
`)
	f, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, f.Circuits, 1)

	c, err := BuildCircuit(f.Circuits[0])
	require.NoError(t, err)
	assert.Len(t, c.Moments, 2)
	assert.Equal(t, "ms(0.785398) q(0), q(1)", c.AllOperations()[2].String())
}

func TestParseYAMLRejectsUnknownFields(t *testing.T) {
	_, err := ParseYAML([]byte("circuits:\n  - name: a\n    operations: []\n"))
	require.Error(t, err)

	_, err = ParseYAML(nil)
	require.Error(t, err)
}

func TestSpecRoundTripThroughJSON(t *testing.T) {
	in := ir.NewCircuit("rt",
		ir.On(ir.Gate{Name: "phased_x", Params: []float64{math.Pi, 0.25}}, ir.LineQubit{X: 0}),
		ir.On(ir.Gate{Name: "unitary", Matrix: ir.Matrix{{0, 1i}, {1i, 0}}}, ir.GridQubit{Row: 1, Col: 1}),
		ir.On(ir.Gate{Name: "measure", Key: "m"}, ir.LineQubit{X: 0}),
	)

	data, err := json.Marshal(CircuitFile{Circuits: []CircuitSpec{SpecFromCircuit(in)}})
	require.NoError(t, err)

	f, err := ParseJSON(data)
	require.NoError(t, err)
	out, err := BuildCircuit(f.Circuits[0])
	require.NoError(t, err)
	assert.Equal(t, ir.MustCircuitHash(in), ir.MustCircuitHash(out))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "pair.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
circuits:
  - name: first
    ops:
      - {gate: x, qubits: ["q(0)"]}
  - ops:
      - {gate: cz, qubits: ["q(0)", "q(1)"]}
`), 0o644))

	circuits, err := LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, circuits, 2)
	assert.Equal(t, "first", circuits[0].Name)
	assert.Equal(t, "pair[1]", circuits[1].Name)

	jsonPath := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"circuits": [{"name": "j", "ops": [{"gate": "rx", "params": ["pi/2"], "qubits": ["q(0)"]}]}]}`), 0o644))
	circuits, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "rx(1.570796) q(0)", circuits[0].AllOperations()[0].String())

	_, err = LoadFile(filepath.Join(dir, "circuit.txt"))
	assert.Error(t, err)

	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte("circuits: []\n"), 0o644))
	_, err = LoadFile(emptyPath)
	assert.Error(t, err)
}
