package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/store"
)

// Replay
//
// Conversion is a pure function of (circuit, options): synthesis seeds its
// random choices with a fixed seed and never reads wall time. Replaying a
// stored run therefore re-executes the same code path on the stored input
// and options and compares the result with the stored one:
//
//	[stored run] → [converterFor(options)] → [ConvertCircuit(input)]
//	                                                ↓
//	                       status, output hash, error text equal? → matched
//
// Every replay is appended to the store with its own seq, so a log records
// both the original runs and each later check of them.

// ReplayResult is the outcome of replaying one stored run.
type ReplayResult struct {
	Run    ir.Run      // the stored run
	Replay ir.Replay   // the recorded replay
	Output *ir.Circuit // the re-converted circuit, nil on error
	Error  string      // the re-conversion error, empty on success
}

// Replay re-runs the stored run with the given ID and records the outcome.
func (e *Engine) Replay(ctx context.Context, runID string) (ReplayResult, error) {
	if e.store == nil {
		return ReplayResult{}, &RuntimeError{Code: ErrCodeNoStore, Message: "replay requires a store", RunID: runID}
	}
	run, err := e.store.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return ReplayResult{}, &RuntimeError{Code: ErrCodeRunNotFound, Message: "no such run", RunID: runID}
	}
	if err != nil {
		return ReplayResult{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	return e.replayRun(ctx, run)
}

// ReplayAll replays every stored run in seq order. It stops at the first
// engine error; mismatches are reported in the results, not as errors.
func (e *Engine) ReplayAll(ctx context.Context) ([]ReplayResult, error) {
	return e.ReplayMatching(ctx, store.RunFilter{})
}

// ReplayMatching replays the stored runs selected by f, in seq order.
func (e *Engine) ReplayMatching(ctx context.Context, f store.RunFilter) ([]ReplayResult, error) {
	if e.store == nil {
		return nil, &RuntimeError{Code: ErrCodeNoStore, Message: "replay requires a store"}
	}
	runs, err := e.store.FindRuns(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}

	results := make([]ReplayResult, 0, len(runs))
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := e.replayRun(ctx, run)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) replayRun(ctx context.Context, run ir.Run) (ReplayResult, error) {
	res := ReplayResult{Run: run}
	replay := ir.Replay{RunID: run.ID, Seq: e.clock.Next()}

	conv, err := converterFor(run.Options)
	if err != nil {
		return ReplayResult{}, &RuntimeError{Code: ErrCodeInvalidOptions, Message: err.Error(), RunID: run.ID}
	}

	switch {
	case run.Input == nil:
		return ReplayResult{}, fmt.Errorf("run %s has no input circuit", run.ID)
	case run.Status == ir.RunError && e.checkQuota(run.ID, run.Stats.OpsIn) != nil:
		// Quota rejections never reached the converter.
		replay.Status = ir.RunError
		res.Error = e.checkQuota(run.ID, run.Stats.OpsIn).Error()
	default:
		out, err := conv.ConvertCircuit(run.Input)
		if err != nil {
			replay.Status = ir.RunError
			res.Error = err.Error()
			break
		}
		hash, err := ir.CircuitHash(out)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("hash replayed circuit: %w", err)
		}
		replay.Status = ir.RunOK
		replay.OutputHash = hash
		res.Output = out
	}

	replay.Matched = replay.Status == run.Status &&
		replay.OutputHash == run.OutputHash &&
		res.Error == run.Error

	id, err := e.store.WriteReplay(ctx, replay)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("write replay of %s: %w", run.ID, err)
	}
	replay.ID = id
	res.Replay = replay

	if replay.Matched {
		slog.Info("replay matched", "run_id", run.ID, "seq", replay.Seq)
	} else {
		slog.Warn("replay mismatch",
			"run_id", run.ID,
			"stored_status", run.Status,
			"replayed_status", replay.Status,
			"stored_hash", run.OutputHash,
			"replayed_hash", replay.OutputHash,
		)
	}
	return res, nil
}
