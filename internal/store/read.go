package store

import (
	"context"
	"fmt"

	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/queryir"
	"github.com/roach88/ionc/internal/querysql"
)

// runColumns is the column order scanRun expects.
var runColumns = []string{
	"id", "seq", "circuit_name", "input_hash", "input", "options", "status", "output_hash", "output", "error",
	"ops_in", "ops_out", "entanglers", "passed_through", "engine_version", "ir_version",
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// RunFilter selects runs from the log. Zero fields match everything.
type RunFilter struct {
	Circuit    string // circuit name
	Status     string // ir.RunOK or ir.RunError
	InputHash  string
	Mismatched bool // only runs with at least one mismatched replay
}

// Query builds the log query for the filter.
func (f RunFilter) Query() queryir.Query {
	var preds []queryir.Predicate
	if f.Circuit != "" {
		preds = append(preds, queryir.Equals{Field: "circuit_name", Value: ir.Str(f.Circuit)})
	}
	if f.Status != "" {
		preds = append(preds, queryir.Equals{Field: "status", Value: ir.Str(f.Status)})
	}
	if f.InputHash != "" {
		preds = append(preds, queryir.Equals{Field: "input_hash", Value: ir.Str(f.InputHash)})
	}
	sel := queryir.Select{From: queryir.TableRuns, Columns: runColumns}
	if len(preds) > 0 {
		sel.Filter = queryir.And{Predicates: preds}
	}
	if !f.Mismatched {
		return sel
	}
	return queryir.Join{
		Left: sel,
		Right: queryir.Select{
			From:   queryir.TableReplays,
			Filter: queryir.Equals{Field: "matched", Value: ir.Bool(false)},
		},
		On: queryir.ColumnEquals{Left: "runs.id", Right: "replays.run_id"},
	}
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	query, args, err := querysql.NewSQLCompiler().Bind("id", id).Compile(queryir.Select{
		From:    queryir.TableRuns,
		Columns: runColumns,
		Filter:  queryir.ParamEquals{Field: "id", Param: "id"},
	})
	if err != nil {
		return ir.Run{}, fmt.Errorf("compile run query: %w", err)
	}
	return scanRun(s.db.QueryRowContext(ctx, query, args...))
}

// ReadAllRuns returns all runs ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ReadAllRuns(ctx context.Context) ([]ir.Run, error) {
	return s.FindRuns(ctx, RunFilter{})
}

// ReadRunsByInput returns every run of the circuit with the given input
// hash, oldest first.
func (s *Store) ReadRunsByInput(ctx context.Context, inputHash string) ([]ir.Run, error) {
	return s.FindRuns(ctx, RunFilter{InputHash: inputHash})
}

// FindRuns returns the runs matching f in log order.
func (s *Store) FindRuns(ctx context.Context, f RunFilter) ([]ir.Run, error) {
	query, args, err := querysql.NewSQLCompiler().Compile(f.Query())
	if err != nil {
		return nil, fmt.Errorf("compile run query: %w", err)
	}
	return s.queryRuns(ctx, query, args...)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadReplays returns the replays of a run ordered by seq ASC, id ASC.
func (s *Store) ReadReplays(ctx context.Context, runID string) ([]ir.Replay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, status, output_hash, matched
		FROM replays
		WHERE run_id = ?
		ORDER BY seq ASC, id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query replays: %w", err)
	}
	defer rows.Close()

	replays := []ir.Replay{}
	for rows.Next() {
		var r ir.Replay
		if err := rows.Scan(&r.ID, &r.RunID, &r.Seq, &r.Status, &r.OutputHash, &r.Matched); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		replays = append(replays, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replays: %w", err)
	}
	return replays, nil
}

// scanRun scans a row into a Run. sql.ErrNoRows is returned unwrapped.
func scanRun(row rowScanner) (ir.Run, error) {
	var run ir.Run
	var input, options, output string

	if err := row.Scan(
		&run.ID, &run.Seq, &run.CircuitName, &run.InputHash, &input, &options,
		&run.Status, &run.OutputHash, &output, &run.Error,
		&run.Stats.OpsIn, &run.Stats.OpsOut, &run.Stats.Entanglers, &run.Stats.PassedThrough,
		&run.EngineVersion, &run.IRVersion,
	); err != nil {
		return ir.Run{}, err
	}

	var err error
	if run.Input, err = unmarshalCircuit(input); err != nil {
		return ir.Run{}, err
	}
	if run.Output, err = unmarshalCircuit(output); err != nil {
		return ir.Run{}, err
	}
	if run.Options, err = unmarshalOptions(options); err != nil {
		return ir.Run{}, err
	}
	return run, nil
}
