package store

import (
	"context"
	"fmt"

	"github.com/roach88/ionc/internal/ir"
)

// WriteRun inserts a run record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., a reused seq) still return errors.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	input, err := marshalCircuit(run.Input)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if input == "" {
		return fmt.Errorf("write run: input circuit is required")
	}
	output, err := marshalCircuit(run.Output)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	options, err := marshalOptions(run.Options)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, circuit_name, input_hash, input, options, status, output_hash, output, error,
		 ops_in, ops_out, entanglers, passed_through, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.CircuitName,
		run.InputHash,
		input,
		options,
		run.Status,
		run.OutputHash,
		output,
		run.Error,
		run.Stats.OpsIn,
		run.Stats.OpsOut,
		run.Stats.Entanglers,
		run.Stats.PassedThrough,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteReplay records the outcome of replaying a run and returns its ID.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteReplay(ctx context.Context, r ir.Replay) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO replays
		(run_id, seq, status, output_hash, matched)
		VALUES (?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.Seq,
		r.Status,
		r.OutputHash,
		r.Matched,
	)
	if err != nil {
		return 0, fmt.Errorf("write replay: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write replay: last insert id: %w", err)
	}
	return id, nil
}
