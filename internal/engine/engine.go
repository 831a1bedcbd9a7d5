package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/ionc/internal/decompose"
	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/store"
	"github.com/roach88/ionc/internal/synth"
)

// RunIDGenerator generates unique run IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// Sequencer issues logical clock values. Implemented by Clock and by
// testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Engine is the single-writer conversion loop.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Convert(), Replay(): must not run concurrently with Run()
type Engine struct {
	store   *store.Store // nil disables persistence
	clock   Sequencer
	queue   *jobQueue
	idGen   RunIDGenerator
	options ir.RunOptions
	maxOps  int

	mu   sync.Mutex
	runs []ir.Run
	errs []error
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithRunOptions sets the options used for jobs that carry none.
func WithRunOptions(opts ir.RunOptions) EngineOption {
	return func(e *Engine) {
		e.options = opts
	}
}

// WithClock replaces the engine clock. Used to resume numbering after the
// last run in a store.
func WithClock(c Sequencer) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// DefaultRunOptions are the converter defaults: Fail policy, default
// synthesis tolerance, no verification.
func DefaultRunOptions() ir.RunOptions {
	return ir.RunOptions{
		Policy: decompose.Fail.String(),
		Atol:   decompose.DefaultTolerance,
	}
}

// New creates an Engine. s may be nil, in which case runs are kept in
// memory only and Replay is unavailable.
func New(s *store.Store, idGen RunIDGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   s,
		clock:   NewClock(),
		queue:   newJobQueue(),
		idGen:   idGen,
		options: DefaultRunOptions(),
		maxOps:  DefaultMaxOps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue submits a job for processing by the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(j Job) bool {
	return e.queue.Enqueue(j)
}

// Stop closes the job queue. Run drains the jobs already queued and then
// returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Run starts the single-writer loop.
// Blocks until context is cancelled or Stop() is called and the queue is
// drained.
//
// ERROR HANDLING: a job that fails (store write, invalid options)
// is logged and collected in Err(); processing continues with the next job.
// There are no retries.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")

	for {
		job, ok := e.queue.TryDequeue()
		if ok {
			if _, err := e.process(ctx, job); err != nil {
				logJobError(job, err)
				e.mu.Lock()
				e.errs = append(e.errs, err)
				e.mu.Unlock()
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case _, open := <-e.queue.Wait():
			// The signal channel is closed by Stop; drain what is left
			// before returning.
			if !open && e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Convert processes a single circuit synchronously with the engine
// defaults, through the same path as the Run loop.
func (e *Engine) Convert(ctx context.Context, c *ir.Circuit) (ir.Run, error) {
	return e.process(ctx, Job{Circuit: c})
}

// Runs returns the runs processed so far, in processing order.
func (e *Engine) Runs() []ir.Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ir.Run(nil), e.runs...)
}

// Err returns the job errors collected by Run, joined.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.errs...)
}

// process converts a job's circuit and persists the run.
// CRITICAL: Called only from Run() or Convert() - single-writer guarantee.
func (e *Engine) process(ctx context.Context, job Job) (ir.Run, error) {
	if job.Circuit == nil {
		return ir.Run{}, fmt.Errorf("job missing circuit")
	}
	opts := e.options
	if job.Options != nil {
		opts = *job.Options
	}

	run, err := e.execute(job.Circuit, opts)
	if err != nil {
		return ir.Run{}, err
	}

	if e.store != nil {
		if err := e.store.WriteRun(ctx, run); err != nil {
			return run, fmt.Errorf("write run %s: %w", run.ID, err)
		}
	}

	e.mu.Lock()
	e.runs = append(e.runs, run)
	e.mu.Unlock()

	slog.Info("run recorded",
		"run_id", run.ID,
		"seq", run.Seq,
		"circuit", run.CircuitName,
		"status", run.Status,
		"ops_in", run.Stats.OpsIn,
		"ops_out", run.Stats.OpsOut,
		"entanglers", run.Stats.Entanglers,
	)
	return run, nil
}

// execute builds a run record. Conversion failures are recorded on the
// run; only problems with the job itself are returned as errors.
func (e *Engine) execute(c *ir.Circuit, opts ir.RunOptions) (ir.Run, error) {
	run := ir.Run{
		ID:            e.idGen.Generate(),
		Seq:           e.clock.Next(),
		CircuitName:   c.Name,
		Input:         c,
		Options:       opts,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	inputHash, err := ir.CircuitHash(c)
	if err != nil {
		return ir.Run{}, fmt.Errorf("hash circuit %q: %w", c.Name, err)
	}
	run.InputHash = inputHash
	run.Stats.OpsIn = len(c.AllOperations())

	if err := e.checkQuota(run.ID, run.Stats.OpsIn); err != nil {
		slog.Error("max operations quota exceeded",
			"run_id", run.ID,
			"circuit", c.Name,
			"ops", run.Stats.OpsIn,
			"limit", e.maxOps,
			"event", "quota_exceeded",
		)
		run.Status = ir.RunError
		run.Error = err.Error()
		return run, nil
	}

	conv, err := converterFor(opts)
	if err != nil {
		return ir.Run{}, &RuntimeError{Code: ErrCodeInvalidOptions, Message: err.Error(), RunID: run.ID}
	}

	out, err := conv.ConvertCircuit(c)
	if err != nil {
		run.Status = ir.RunError
		run.Error = err.Error()
		return run, nil
	}
	outputHash, err := ir.CircuitHash(out)
	if err != nil {
		return ir.Run{}, fmt.Errorf("hash converted circuit %q: %w", c.Name, err)
	}

	run.Status = ir.RunOK
	run.Output = out
	run.OutputHash = outputHash
	run.Stats = statsFor(run.Stats.OpsIn, out)
	return run, nil
}

// converterFor builds the converter a run's options describe. Converter
// logs go to the default slog logger.
func converterFor(opts ir.RunOptions) (*decompose.Converter, error) {
	policy, err := decompose.ParseFailurePolicy(opts.Policy)
	if err != nil {
		return nil, err
	}
	if opts.UnitarityAtol < 0 {
		return nil, fmt.Errorf("negative unitarity tolerance %g", opts.UnitarityAtol)
	}
	copts := []decompose.Option{
		decompose.WithFailurePolicy(policy),
		decompose.WithTolerance(opts.Atol),
		decompose.WithLogger(slog.Default()),
	}
	if opts.VerifyAtol > 0 {
		copts = append(copts, decompose.WithVerification(opts.VerifyAtol))
	}
	if opts.UnitarityAtol > 0 {
		copts = append(copts, decompose.WithUnitarityTolerance(opts.UnitarityAtol))
	}
	return decompose.New(copts...), nil
}

func statsFor(opsIn int, out *ir.Circuit) ir.RunStats {
	ops := out.AllOperations()
	stats := ir.RunStats{
		OpsIn:      opsIn,
		OpsOut:     len(ops),
		Entanglers: synth.CountEntanglers(ops),
	}
	for _, op := range ops {
		if !gates.IsNative(op) {
			stats.PassedThrough++
		}
	}
	return stats
}

// logJobError logs a failed job with enough context to resubmit it.
func logJobError(job Job, err error) {
	name := ""
	if job.Circuit != nil {
		name = job.Circuit.Name
	}
	slog.Error("job processing failed",
		"circuit", name,
		"error", err,
	)
}
