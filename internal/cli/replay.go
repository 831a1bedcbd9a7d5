package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ionc/internal/engine"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only

	Circuit    string
	Status     string
	Mismatched bool
}

// Filter returns the run selection given by the filter flags.
func (o *ReplayOptions) Filter() (store.RunFilter, error) {
	switch o.Status {
	case "", ir.RunOK, ir.RunError:
	default:
		return store.RunFilter{}, fmt.Errorf("invalid status %q: must be %s or %s", o.Status, ir.RunOK, ir.RunError)
	}
	return store.RunFilter{Circuit: o.Circuit, Status: o.Status, Mismatched: o.Mismatched}, nil
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID        string `json:"run_id"`
	Circuit      string `json:"circuit"`
	Seq          int64  `json:"seq"`
	ReplaySeq    int64  `json:"replay_seq"`
	StoredStatus string `json:"stored_status"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	Matched      bool   `json:"matched"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs       []ReplayRunResult `json:"runs"`
	TotalRuns  int               `json:"total_runs"`
	Mismatches int               `json:"mismatches"`
	AllMatched bool              `json:"all_matched"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run stored conversions and compare results",
		Long: `Re-run conversions recorded with "convert --db" using their stored input
and options, and check that each reproduces its stored status, output hash
and error. Every replay is appended to the database.

Exit codes:
  0 - All replays matched
  1 - At least one replay differed from its stored run
  2 - Command error (database not found, unknown run, etc.)

Examples:
  ionc replay --db ./ionc.db
  ionc replay --db ./ionc.db --run 0190a5b2-...
  ionc replay --db ./ionc.db --status error --circuit bell
  ionc replay --db ./ionc.db --mismatched
  ionc replay --db ./ionc.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "replay runs of this circuit only")
	cmd.Flags().StringVar(&opts.Status, "status", "", "replay runs with this stored status only (ok, error)")
	cmd.Flags().BoolVar(&opts.Mismatched, "mismatched", false, "replay runs that have diverged before")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	filter, err := opts.Filter()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	next, err := st.NextSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}
	eng := engine.New(st, engine.UUIDv7Generator{}, engine.WithClock(engine.NewClockAt(next-1)))

	var replays []engine.ReplayResult
	if opts.RunID != "" {
		res, err := eng.Replay(ctx, opts.RunID)
		if engine.IsNotFound(err) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", opts.RunID), err)
		}
		replays = append(replays, res)
	} else {
		replays, err = eng.ReplayMatching(ctx, filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay runs", err)
		}
	}

	result := ReplayResult{
		Runs:       make([]ReplayRunResult, 0, len(replays)),
		TotalRuns:  len(replays),
		AllMatched: true,
	}
	for _, r := range replays {
		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:        r.Run.ID,
			Circuit:      r.Run.CircuitName,
			Seq:          r.Run.Seq,
			ReplaySeq:    r.Replay.Seq,
			StoredStatus: r.Run.Status,
			Status:       r.Replay.Status,
			Error:        r.Error,
			Matched:      r.Replay.Matched,
		})
		if !r.Replay.Matched {
			result.Mismatches++
			result.AllMatched = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(ctx, formatter, st, result, filter != (store.RunFilter{}))
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllMatched {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeReplay,
			Message: fmt.Sprintf("%d replay(s) did not match", result.Mismatches),
		}
	}
	if err := formatter.JSON(response); err != nil {
		return err
	}
	if !result.AllMatched {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text, followed by a summary
// of the whole log.
func outputReplayText(ctx context.Context, formatter *OutputFormatter, st *store.Store, result ReplayResult, filtered bool) error {
	w := formatter.Writer

	if result.TotalRuns == 0 {
		if filtered {
			fmt.Fprintln(w, "No matching runs found.")
		} else {
			fmt.Fprintln(w, "No runs found in database.")
		}
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)
	for _, r := range result.Runs {
		mark := "✓"
		if !r.Matched {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (run %s, seq %d)\n", mark, r.Circuit, r.RunID, r.Seq)
		if !r.Matched {
			fmt.Fprintf(w, "  stored %s, replayed %s\n", r.StoredStatus, r.Status)
			if r.Error != "" {
				fmt.Fprintf(w, "  %s\n", r.Error)
			}
		}
	}

	if formatter.Verbose {
		if sum, err := st.Summary(ctx); err == nil {
			fmt.Fprintf(w, "\nLog: %d run(s), %d failed, %d replay(s), %d mismatch(es), last seq %d\n",
				sum.Runs, sum.Failed, sum.Replays, sum.Mismatches, sum.LastSeq)
		}
	}

	fmt.Fprintln(w)
	if result.AllMatched {
		fmt.Fprintln(w, "✓ All replays matched")
		return nil
	}
	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}
