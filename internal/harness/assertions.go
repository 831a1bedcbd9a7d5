package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ionc/internal/compiler"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/sim"
	"github.com/roach88/ionc/internal/synth"
)

// DefaultEquivalenceAtol is the tolerance of equivalent assertions that set
// no atol.
const DefaultEquivalenceAtol = 1e-6

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Circuit  string       // Circuit the failing run converted
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Circuit != "" {
		fmt.Fprintf(&buf, " (circuit %s)", e.Circuit)
	}
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		if event.Type != EventRun {
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %s %s", i+1, event.Circuit, event.Status)
		if event.Error != "" {
			fmt.Fprintf(&buf, " %q", event.Error)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	if a.Type == AssertReplayMatches {
		return assertReplayMatches(result.Trace)
	}

	runs, err := selectRuns(result, a.Circuit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		var err error
		switch a.Type {
		case AssertStatus:
			err = assertStatus(run, a)
		case AssertEquivalent:
			err = assertEquivalent(run, a)
		case AssertNativeOnly:
			err = assertNativeOnly(run)
		case AssertEntanglerCount:
			err = assertEntanglerCount(run, a)
		case AssertSequence:
			err = assertSequence(run, a)
		default:
			return fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			var ae *AssertionError
			if errors.As(err, &ae) {
				ae.Circuit = run.CircuitName
				ae.Trace = result.Trace
			}
			return err
		}
	}
	return nil
}

func selectRuns(result *Result, circuit string) ([]ir.Run, error) {
	if circuit == "" {
		return result.Runs, nil
	}
	for _, run := range result.Runs {
		if run.CircuitName == circuit {
			return []ir.Run{run}, nil
		}
	}
	return nil, fmt.Errorf("no run for circuit %q", circuit)
}

// assertStatus checks the run status and, optionally, its error text.
func assertStatus(run ir.Run, a Assertion) error {
	if run.Status != a.Status {
		actual := run.Status
		if run.Error != "" {
			actual += ": " + run.Error
		}
		return &AssertionError{
			Type:     AssertStatus,
			Expected: a.Status,
			Actual:   actual,
		}
	}
	if a.ErrorContains != "" && !strings.Contains(run.Error, a.ErrorContains) {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("error containing %q", a.ErrorContains),
			Actual:   fmt.Sprintf("%q", run.Error),
		}
	}
	return nil
}

// assertEquivalent simulates input and output and compares them up to
// global phase.
func assertEquivalent(run ir.Run, a Assertion) error {
	if run.Output == nil {
		return &AssertionError{
			Type:     AssertEquivalent,
			Expected: "converted circuit",
			Actual:   "no output: " + run.Error,
		}
	}
	atol := a.Atol
	if atol == 0 {
		atol = DefaultEquivalenceAtol
	}
	ok, err := sim.Equivalent(run.Input, run.Output, atol)
	if err != nil {
		return fmt.Errorf("simulate %s: %w", run.CircuitName, err)
	}
	if !ok {
		return &AssertionError{
			Type:     AssertEquivalent,
			Expected: fmt.Sprintf("output equivalent to input within %g", atol),
			Actual:   "unitaries differ",
		}
	}
	return nil
}

// assertNativeOnly checks the output with the native-gate validator.
func assertNativeOnly(run ir.Run) error {
	if run.Output == nil {
		return &AssertionError{
			Type:     AssertNativeOnly,
			Expected: "converted circuit",
			Actual:   "no output: " + run.Error,
		}
	}
	if errs := compiler.ValidateNative(run.Output); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return &AssertionError{
			Type:     AssertNativeOnly,
			Expected: "only native operations",
			Actual:   strings.Join(msgs, "; "),
		}
	}
	return nil
}

// assertEntanglerCount bounds the number of ms gates in the output.
func assertEntanglerCount(run ir.Run, a Assertion) error {
	if run.Output == nil {
		return &AssertionError{
			Type:     AssertEntanglerCount,
			Expected: "converted circuit",
			Actual:   "no output: " + run.Error,
		}
	}
	n := synth.CountEntanglers(run.Output.AllOperations())
	switch {
	case a.Count != nil && n != *a.Count:
		return &AssertionError{
			Type:     AssertEntanglerCount,
			Expected: fmt.Sprintf("%d entanglers", *a.Count),
			Actual:   fmt.Sprintf("%d entanglers", n),
		}
	case a.Max != nil && n > *a.Max:
		return &AssertionError{
			Type:     AssertEntanglerCount,
			Expected: fmt.Sprintf("at most %d entanglers", *a.Max),
			Actual:   fmt.Sprintf("%d entanglers", n),
		}
	}
	return nil
}

// assertSequence compares the rendered output operations with the expected
// strings.
func assertSequence(run ir.Run, a Assertion) error {
	var got []string
	if run.Output != nil {
		for _, op := range run.Output.AllOperations() {
			got = append(got, op.String())
		}
	}
	if !slices.Equal(got, a.Ops) {
		return &AssertionError{
			Type:     AssertSequence,
			Expected: fmt.Sprintf("%q", a.Ops),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

// assertReplayMatches requires at least one replay and no mismatches.
func assertReplayMatches(trace []TraceEvent) error {
	replays := 0
	for _, ev := range trace {
		if ev.Type != EventReplay {
			continue
		}
		replays++
		if ev.Matched == nil || !*ev.Matched {
			return &AssertionError{
				Type:     AssertReplayMatches,
				Circuit:  ev.Circuit,
				Expected: "replay reproduces the stored run",
				Actual:   fmt.Sprintf("mismatch at seq %d (status %s)", ev.Seq, ev.Status),
				Trace:    trace,
			}
		}
	}
	if replays == 0 {
		return &AssertionError{
			Type:     AssertReplayMatches,
			Expected: "at least one replay",
			Actual:   "no replays in trace",
			Trace:    trace,
		}
	}
	return nil
}
