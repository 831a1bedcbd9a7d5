package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ionc/internal/ir"
)

// MarshalTrace renders a scenario trace as canonical JSON followed by a
// newline. Hashes and timestamps are left out, so the bytes depend only on
// the scenario.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	events := make(ir.List, len(result.Trace))
	for i, ev := range result.Trace {
		events[i] = traceEventValue(ev)
	}
	data, err := ir.MarshalCanonical(ir.Object{
		"scenario_name": ir.Str(scenarioName),
		"trace":         events,
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func traceEventValue(ev TraceEvent) ir.Object {
	obj := ir.Object{
		"type":    ir.Str(ev.Type),
		"seq":     ir.Int(ev.Seq),
		"run_id":  ir.Str(ev.RunID),
		"circuit": ir.Str(ev.Circuit),
		"status":  ir.Str(ev.Status),
	}
	if ev.Error != "" {
		obj["error"] = ir.Str(ev.Error)
	}
	if ev.Type == EventRun && ev.Status == ir.RunOK {
		ops := make(ir.List, len(ev.Ops))
		for i, op := range ev.Ops {
			ops[i] = ir.Str(op)
		}
		obj["ops"] = ops
	}
	if ev.Stats != nil {
		obj["stats"] = ir.Object{
			"ops_in":         ir.Int(ev.Stats.OpsIn),
			"ops_out":        ir.Int(ev.Stats.OpsOut),
			"entanglers":     ir.Int(ev.Stats.Entanglers),
			"passed_through": ir.Int(ev.Stats.PassedThrough),
		}
	}
	if ev.Matched != nil {
		obj["matched"] = ir.Bool(*ev.Matched)
	}
	return obj
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
