package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Summary describes the contents of a conversion log.
type Summary struct {
	Runs       int   // all recorded runs
	Failed     int   // runs with status "error"
	LastSeq    int64 // highest run seq, 0 when empty
	Replays    int   // all recorded replays
	Mismatches int   // replays whose output differed from the stored run
}

// Summary aggregates the run and replay tables.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var failed, lastSeq, mismatches sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(status = 'error'), MAX(seq)
		FROM runs
	`).Scan(&sum.Runs, &failed, &lastSeq)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: runs: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(matched = 0)
		FROM replays
	`).Scan(&sum.Replays, &mismatches)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: replays: %w", err)
	}

	sum.Failed = int(failed.Int64)
	sum.LastSeq = lastSeq.Int64
	sum.Mismatches = int(mismatches.Int64)
	return sum, nil
}
