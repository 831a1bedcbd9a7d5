package harness

import (
	"context"
	"fmt"

	"github.com/roach88/ionc/internal/engine"
	"github.com/roach88/ionc/internal/store"
	"github.com/roach88/ionc/internal/testutil"
)

// Harness runs one scenario against a fresh engine and store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	ids    *testutil.SequentialIDGenerator
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and engine
// 2. Load circuits from sources and inline specs
// 3. Enqueue every circuit and drain the engine
// 4. Replay every run if requested
// 5. Evaluate assertions against the recorded runs
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	circuits, err := scenario.LoadCircuits()
	if err != nil {
		return nil, fmt.Errorf("failed to load circuits: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store: st,
		clock: testutil.NewDeterministicClock(),
		ids:   testutil.NewSequentialIDGenerator(scenario.RunIDPrefix),
	}
	h.engine = engine.New(st, h.ids,
		engine.WithClock(h.clock),
		engine.WithRunOptions(scenario.RunOptions(engine.DefaultRunOptions())),
	)

	for _, c := range circuits {
		if !h.engine.Enqueue(engine.Job{Circuit: c}) {
			return nil, fmt.Errorf("failed to enqueue circuit %q", c.Name)
		}
	}
	h.engine.Stop()
	if err := h.engine.Run(ctx); err != nil {
		return nil, fmt.Errorf("engine run: %w", err)
	}
	if err := h.engine.Err(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	result := NewResult()
	for _, run := range h.engine.Runs() {
		result.AddRunTrace(run)
	}

	if scenario.Replay {
		replays, err := h.engine.ReplayAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		for _, r := range replays {
			result.AddReplayTrace(r)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
