package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/roach88/ionc/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a successful run of a two-operation circuit.
func createTestRun(id string, seq int64) ir.Run {
	q0, q1 := ir.LineQubit{X: 0}, ir.LineQubit{X: 1}
	input := ir.NewCircuit("bell",
		ir.On(ir.Gate{Name: "h"}, q0),
		ir.On(ir.Gate{Name: "cnot"}, q0, q1),
	)
	output := ir.NewCircuit("bell",
		ir.On(ir.Gate{Name: "rx", Params: []float64{math.Pi}}, q0),
		ir.On(ir.Gate{Name: "ry", Params: []float64{-math.Pi / 2}}, q0),
		ir.On(ir.Gate{Name: "ms", Params: []float64{math.Pi / 4}}, q0, q1),
	)
	return ir.Run{
		ID:            id,
		Seq:           seq,
		CircuitName:   "bell",
		Input:         input,
		InputHash:     ir.MustCircuitHash(input),
		Options:       ir.RunOptions{Policy: "fail", Atol: 1e-8, VerifyAtol: 1e-7},
		Status:        ir.RunOK,
		Output:        output,
		OutputHash:    ir.MustCircuitHash(output),
		Stats:         ir.RunStats{OpsIn: 2, OpsOut: 3, Entanglers: 1},
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}
