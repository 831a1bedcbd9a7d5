package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/compiler"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
	"github.com/roach88/ionc/internal/sim"
	"github.com/roach88/ionc/internal/store"
)

var (
	q0 = ir.LineQubit{X: 0}
	q1 = ir.LineQubit{X: 1}
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func bell() *ir.Circuit {
	return ir.NewCircuit("bell",
		ir.On(ir.Gate{Name: "h"}, q0),
		ir.On(ir.Gate{Name: "cnot"}, q0, q1),
		ir.On(ir.Gate{Name: "measure", Key: "m"}, q0, q1),
	)
}

func randomTwoQubit(seed uint64) *ir.Circuit {
	u := linalg.RandomUnitary(rand.New(rand.NewPCG(seed, seed+1)), 4)
	return ir.NewCircuit("haar", ir.On(ir.Gate{Name: "unitary", Matrix: u.Rows()}, q0, q1))
}

func TestEngine_RunProcessesJobsInOrder(t *testing.T) {
	e := New(nil, NewFixedGenerator("run-1", "run-2", "run-3"))

	names := []string{"a", "b", "c"}
	for _, name := range names {
		c := bell()
		c.Name = name
		require.True(t, e.Enqueue(Job{Circuit: c}))
	}
	e.Stop()

	require.NoError(t, e.Run(context.Background()))
	require.NoError(t, e.Err())

	runs := e.Runs()
	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, names[i], run.CircuitName)
		assert.Equal(t, int64(i+1), run.Seq)
		assert.Equal(t, ir.RunOK, run.Status)
	}
	assert.Equal(t, "run-1", runs[0].ID)
	assert.False(t, e.Enqueue(Job{Circuit: bell()}), "enqueue after Stop must fail")
}

func TestEngine_RunStopsOnContextCancel(t *testing.T) {
	e := New(nil, UUIDv7Generator{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngine_ConvertRecordsRun(t *testing.T) {
	s := openTestStore(t)
	e := New(s, NewFixedGenerator("run-1"))
	in := bell()

	run, err := e.Convert(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, ir.RunOK, run.Status)
	assert.Equal(t, ir.MustCircuitHash(in), run.InputHash)
	assert.Equal(t, ir.RunStats{OpsIn: 3, OpsOut: 8, Entanglers: 1}, run.Stats)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)
	assert.Empty(t, compiler.ValidateNative(run.Output))

	ok, err := sim.Equivalent(in, run.Output, 1e-6)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.OutputHash, stored.OutputHash)
	assert.Equal(t, run.Stats, stored.Stats)
}

func TestEngine_FailurePolicy(t *testing.T) {
	in := ir.NewCircuit("reset", ir.On(ir.Gate{Name: "reset"}, q0), ir.On(ir.Gate{Name: "x"}, q1))

	e := New(nil, NewFixedGenerator("run-1"))
	run, err := e.Convert(context.Background(), in)
	require.NoError(t, err, "conversion failures are recorded, not returned")
	assert.Equal(t, ir.RunError, run.Status)
	assert.Contains(t, run.Error, "no unitary")
	assert.Nil(t, run.Output)

	pass := ir.RunOptions{Policy: "pass-through", Atol: 1e-8}
	e = New(nil, NewFixedGenerator("run-2"), WithRunOptions(pass))
	run, err = e.Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, ir.RunOK, run.Status)
	assert.Equal(t, 1, run.Stats.PassedThrough)
	assert.Equal(t, "reset q(0)", run.Output.AllOperations()[0].String())
}

func TestEngine_JobOptionsOverrideDefaults(t *testing.T) {
	e := New(nil, NewFixedGenerator("run-1", "run-2"))
	in := ir.NewCircuit("reset", ir.On(ir.Gate{Name: "reset"}, q0))

	e.Enqueue(Job{Circuit: in})
	e.Enqueue(Job{Circuit: in, Options: &ir.RunOptions{Policy: "pass-through", Atol: 1e-8, VerifyAtol: 1e-7}})
	e.Stop()
	require.NoError(t, e.Run(context.Background()))

	runs := e.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, ir.RunError, runs[0].Status)
	assert.Equal(t, ir.RunOK, runs[1].Status)
	assert.Equal(t, 1e-7, runs[1].Options.VerifyAtol)
}

func TestEngine_QuotaRecordedOnRun(t *testing.T) {
	e := New(nil, NewFixedGenerator("run-1"), WithMaxOps(2))

	run, err := e.Convert(context.Background(), bell())
	require.NoError(t, err)
	assert.Equal(t, ir.RunError, run.Status)
	assert.Contains(t, run.Error, string(ErrCodeQuotaExceeded))
	assert.Equal(t, 3, run.Stats.OpsIn)
}

func TestEngine_InvalidOptionsCollected(t *testing.T) {
	e := New(nil, NewFixedGenerator("run-1", "run-2"))
	e.Enqueue(Job{Circuit: bell(), Options: &ir.RunOptions{Policy: "retry"}})
	e.Enqueue(Job{Circuit: bell()})
	e.Stop()

	require.NoError(t, e.Run(context.Background()))
	assert.Len(t, e.Runs(), 1, "the loop continues after a failed job")

	var re *RuntimeError
	require.ErrorAs(t, e.Err(), &re)
	assert.Equal(t, ErrCodeInvalidOptions, re.Code)
}

func TestEngine_NilCircuit(t *testing.T) {
	e := New(nil, NewFixedGenerator())
	_, err := e.process(context.Background(), Job{})
	assert.Error(t, err)
}

func TestEngine_ClockResumesFromStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := New(s, NewFixedGenerator("run-1")).Convert(ctx, bell())
	require.NoError(t, err)

	next, err := s.NextSeq(ctx)
	require.NoError(t, err)
	e := New(s, NewFixedGenerator("run-2"), WithClock(NewClockAt(next-1)))
	run, err := e.Convert(ctx, bell())
	require.NoError(t, err)
	assert.Equal(t, int64(2), run.Seq)
}

func TestEngine_VerificationOption(t *testing.T) {
	opts := DefaultRunOptions()
	opts.VerifyAtol = 1e-7
	e := New(nil, NewFixedGenerator("run-1"), WithRunOptions(opts))

	run, err := e.Convert(context.Background(), randomTwoQubit(7))
	require.NoError(t, err)
	assert.Equal(t, ir.RunOK, run.Status)
	assert.LessOrEqual(t, run.Stats.Entanglers, 3)
}

func TestEngine_UnitarityToleranceOption(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rounded := ir.NewCircuit("rounded", ir.On(ir.Gate{Name: "unitary", Matrix: ir.Matrix{
		{0.70711, 0.70711},
		{0.70711, -0.70711},
	}}, q0))

	run, err := New(s, NewFixedGenerator("run-1")).Convert(ctx, rounded)
	require.NoError(t, err)
	assert.Equal(t, ir.RunError, run.Status)
	assert.Contains(t, run.Error, "not unitary")

	opts := DefaultRunOptions()
	opts.UnitarityAtol = 1e-4
	e := New(s, NewFixedGenerator("run-2"), WithRunOptions(opts), WithClock(NewClockAt(1)))
	run, err = e.Convert(ctx, rounded)
	require.NoError(t, err)
	assert.Equal(t, ir.RunOK, run.Status)

	stored, err := s.ReadRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, 1e-4, stored.Options.UnitarityAtol)

	replays, err := e.ReplayAll(ctx)
	require.NoError(t, err)
	require.Len(t, replays, 2)
	for _, r := range replays {
		assert.True(t, r.Replay.Matched, "run %s", r.Run.ID)
	}

	opts.UnitarityAtol = -1
	_, err = New(nil, NewFixedGenerator("run-3"), WithRunOptions(opts)).Convert(ctx, rounded)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidOptions, re.Code)
}

func TestEngine_ConvertsRotations(t *testing.T) {
	e := New(nil, NewFixedGenerator("run-1"))
	in := ir.NewCircuit("rz", ir.On(ir.Gate{Name: "rz", Params: []float64{math.Pi / 3}}, q0))

	run, err := e.Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, compiler.ValidateNative(run.Output))
	assert.Zero(t, run.Stats.Entanglers)
}
