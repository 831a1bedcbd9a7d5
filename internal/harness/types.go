package harness

import (
	"github.com/roach88/ionc/internal/engine"
	"github.com/roach88/ionc/internal/ir"
)

// Trace event types.
const (
	EventRun    = "run"
	EventReplay = "replay"
)

// TraceEvent is one entry of a scenario trace: a recorded run or a replay
// of it. Only deterministic fields are kept so traces can be golden files.
type TraceEvent struct {
	Type    string       `json:"type"`
	Seq     int64        `json:"seq"`
	RunID   string       `json:"run_id"`
	Circuit string       `json:"circuit"`
	Status  string       `json:"status"`
	Error   string       `json:"error,omitempty"`
	Ops     []string     `json:"ops,omitempty"`   // run only
	Stats   *ir.RunStats `json:"stats,omitempty"` // run only
	Matched *bool        `json:"matched,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists runs in seq order followed by replays.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Runs holds the full run records, for assertions.
	Runs []ir.Run `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRunTrace records a run.
func (r *Result) AddRunTrace(run ir.Run) {
	r.Runs = append(r.Runs, run)
	stats := run.Stats
	ev := TraceEvent{
		Type:    EventRun,
		Seq:     run.Seq,
		RunID:   run.ID,
		Circuit: run.CircuitName,
		Status:  run.Status,
		Error:   run.Error,
		Stats:   &stats,
	}
	if run.Output != nil {
		for _, op := range run.Output.AllOperations() {
			ev.Ops = append(ev.Ops, op.String())
		}
	}
	r.Trace = append(r.Trace, ev)
}

// AddReplayTrace records a replay.
func (r *Result) AddReplayTrace(res engine.ReplayResult) {
	matched := res.Replay.Matched
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventReplay,
		Seq:     res.Replay.Seq,
		RunID:   res.Run.ID,
		Circuit: res.Run.CircuitName,
		Status:  res.Replay.Status,
		Error:   res.Error,
		Matched: &matched,
	})
}
