package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ionc/internal/compiler"
	"github.com/roach88/ionc/internal/decompose"
	"github.com/roach88/ionc/internal/engine"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/store"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	IgnoreFailures bool    // pass unsupported operations through
	Atol           float64 // synthesis tolerance
	Verify         bool    // check every synthesized sequence
	VerifyAtol     float64 // verification tolerance
	Output         string  // converted circuits file (.yaml, .yml, .json)
	Database       string  // optional run log
}

// ConvertedCircuit is the outcome of converting one circuit.
type ConvertedCircuit struct {
	Name   string      `json:"name"`
	RunID  string      `json:"run_id"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Ops    []string    `json:"ops,omitempty"`
	Stats  ir.RunStats `json:"stats"`
}

// ConvertResult holds the overall convert result.
type ConvertResult struct {
	Circuits []ConvertedCircuit `json:"circuits"`
	Failed   int                `json:"failed"`
	Output   string             `json:"output,omitempty"`
	Database string             `json:"database,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert circuits to the trapped-ion gate set",
		Long: `Convert every circuit in a CUE directory, .cue, .yaml, .yml or .json
file to rx, ry, phased_x, ms and measure operations.

Exit codes:
  0 - All circuits converted
  1 - One or more circuits failed to convert
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  ionc convert ./circuits
  ionc convert bell.yaml -o bell.native.yaml
  ionc convert bell.yaml --ignore-failures --verify
  ionc convert bell.yaml --db ./ionc.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.IgnoreFailures, "ignore-failures", false, "keep unsupported operations instead of failing")
	cmd.Flags().Float64Var(&opts.Atol, "atol", decompose.DefaultTolerance, "synthesis tolerance")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "verify every synthesized sequence by simulation")
	cmd.Flags().Float64Var(&opts.VerifyAtol, "verify-atol", decompose.DefaultVerifyTolerance, "verification tolerance")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write converted circuits to this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")

	return cmd
}

// RunOptions returns the engine options the flags describe.
func (o *ConvertOptions) RunOptions() ir.RunOptions {
	opts := ir.RunOptions{Policy: decompose.Fail.String(), Atol: o.Atol}
	if o.IgnoreFailures {
		opts.Policy = decompose.PassThrough.String()
	}
	if o.Verify {
		opts.VerifyAtol = o.VerifyAtol
	}
	return opts
}

func runConvert(ctx context.Context, opts *ConvertOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	loaded, loadErrs := LoadCircuits(path, LoadModeFailFast)
	if len(loadErrs) > 0 {
		return outputLoadError(formatter, loadErrs[0])
	}
	formatter.VerboseLog("Loaded %d circuit(s) from %d file(s)", len(loaded.Circuits), loaded.FileCount)

	eng, closeStore, err := newConvertEngine(ctx, opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore()

	result := ConvertResult{
		Circuits: make([]ConvertedCircuit, 0, len(loaded.Circuits)),
		Output:   opts.Output,
		Database: opts.Database,
	}
	var converted []*ir.Circuit
	for _, c := range loaded.Circuits {
		run, err := eng.Convert(ctx, c)
		if err != nil {
			_ = formatter.Error(ErrCodeConversion, err.Error(), c.Name)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to convert %s", c.Name), err)
		}
		result.Circuits = append(result.Circuits, convertedCircuit(run))
		if run.Status != ir.RunOK {
			result.Failed++
			continue
		}
		converted = append(converted, run.Output)
	}

	if opts.Output != "" && result.Failed == 0 {
		if err := writeCircuits(opts.Output, converted); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("Wrote %d circuit(s) to %s", len(converted), opts.Output)
	}

	if opts.Format == "json" {
		return outputConvertJSON(formatter, result)
	}
	return outputConvertText(formatter, result)
}

// newConvertEngine builds an engine, store-backed when --db is set. The
// clock resumes after the last stored seq.
func newConvertEngine(ctx context.Context, opts *ConvertOptions) (*engine.Engine, func(), error) {
	engineOpts := []engine.EngineOption{engine.WithRunOptions(opts.RunOptions())}
	if opts.Database == "" {
		return engine.New(nil, engine.UUIDv7Generator{}, engineOpts...), func() {}, nil
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, err
	}
	next, err := st.NextSeq(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	engineOpts = append(engineOpts, engine.WithClock(engine.NewClockAt(next-1)))
	return engine.New(st, engine.UUIDv7Generator{}, engineOpts...), func() { st.Close() }, nil
}

func convertedCircuit(run ir.Run) ConvertedCircuit {
	cc := ConvertedCircuit{
		Name:   run.CircuitName,
		RunID:  run.ID,
		Status: run.Status,
		Error:  run.Error,
		Stats:  run.Stats,
	}
	if run.Output != nil {
		for _, op := range run.Output.AllOperations() {
			cc.Ops = append(cc.Ops, op.String())
		}
	}
	return cc
}

// writeCircuits writes circuits as a circuit file, YAML or JSON by
// extension, that LoadCircuits reads back.
func writeCircuits(path string, circuits []*ir.Circuit) error {
	file := compiler.CircuitFile{Circuits: make([]compiler.CircuitSpec, len(circuits))}
	for i, c := range circuits {
		file.Circuits[i] = compiler.SpecFromCircuit(c)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output extension %q: want .yaml, .yml or .json", filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// outputLoadError reports a load failure as a command error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load circuits", err)
}

func outputConvertJSON(formatter *OutputFormatter, result ConvertResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeConversion,
			Message: fmt.Sprintf("%d circuit(s) failed to convert", result.Failed),
		}
	}
	if err := formatter.JSON(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d circuit(s) failed to convert", result.Failed))
	}
	return nil
}

func outputConvertText(formatter *OutputFormatter, result ConvertResult) error {
	w := formatter.Writer
	for _, c := range result.Circuits {
		if c.Status != ir.RunOK {
			fmt.Fprintf(w, "✗ %s\n", c.Name)
			fmt.Fprintf(w, "  %s\n", c.Error)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d → %d ops, %d ms", c.Name, c.Stats.OpsIn, c.Stats.OpsOut, c.Stats.Entanglers)
		if c.Stats.PassedThrough > 0 {
			fmt.Fprintf(w, ", %d passed through", c.Stats.PassedThrough)
		}
		fmt.Fprintln(w)
		if formatter.Verbose {
			for _, op := range c.Ops {
				fmt.Fprintf(w, "  %s\n", op)
			}
		}
	}

	if result.Failed > 0 {
		fmt.Fprintf(w, "\n✗ %d of %d circuit(s) failed\n", result.Failed, len(result.Circuits))
		return NewExitError(ExitFailure, fmt.Sprintf("%d circuit(s) failed to convert", result.Failed))
	}
	if result.Output != "" {
		fmt.Fprintf(w, "\nWrote %s\n", result.Output)
	}
	return nil
}
