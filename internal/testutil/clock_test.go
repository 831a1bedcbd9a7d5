package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/engine"
	"github.com/roach88/ionc/internal/ir"
)

var _ engine.Sequencer = (*DeterministicClock)(nil)

func TestDeterministicClock_Next(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_ResetReplaysSequence(t *testing.T) {
	clock := NewDeterministicClock()
	first := []int64{clock.Next(), clock.Next(), clock.Next()}

	clock.Reset()
	second := []int64{clock.Next(), clock.Next(), clock.Next()}

	assert.Equal(t, first, second)
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	clock := NewDeterministicClock()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				clock.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), clock.Current())
}

func TestDeterministicClock_DrivesEngine(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next() // seq 1 taken before the engine starts

	e := engine.New(nil, NewSequentialIDGenerator(""), engine.WithClock(clock))
	run, err := e.Convert(context.Background(), ir.NewCircuit("x", ir.On(ir.Gate{Name: "x"}, ir.LineQubit{X: 0})))
	require.NoError(t, err)
	assert.Equal(t, int64(2), run.Seq)
	assert.Equal(t, "test-run-001", run.ID)
}
