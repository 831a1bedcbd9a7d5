package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ionc/internal/compiler"
	"github.com/roach88/ionc/internal/decompose"
	"github.com/roach88/ionc/internal/ir"
)

// Scenario defines a conversion scenario: circuits to convert, the options
// to convert them with, and assertions on the resulting runs.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunIDPrefix names the deterministic run IDs ("<prefix>-001").
	// Defaults to "test-run".
	RunIDPrefix string `yaml:"run_id_prefix,omitempty"`

	// Options configures the converter. Zero values take engine defaults.
	Options ScenarioOptions `yaml:"options,omitempty"`

	// Sources lists YAML or JSON circuit files, relative to the scenario.
	Sources []string `yaml:"sources,omitempty"`

	// Circuits are inline circuits, converted after Sources.
	Circuits []compiler.CircuitSpec `yaml:"circuits,omitempty"`

	// Replay replays every run once conversion is done.
	Replay bool `yaml:"replay,omitempty"`

	// Assertions validate the recorded runs.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the scenario file's directory, for resolving Sources.
	dir string
}

// ScenarioOptions mirrors ir.RunOptions in scenario files.
type ScenarioOptions struct {
	Policy     string  `yaml:"policy,omitempty"`
	Atol       float64 `yaml:"atol,omitempty"`
	VerifyAtol float64 `yaml:"verify_atol,omitempty"`
}

// Assertion validates one or all runs of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Circuit restricts the assertion to the named circuit's run.
	// Empty means every run.
	Circuit string `yaml:"circuit,omitempty"`

	// Status is the expected run status (status).
	Status string `yaml:"status,omitempty"`

	// ErrorContains must be a substring of the run error (status).
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Atol is the equivalence tolerance (equivalent).
	Atol float64 `yaml:"atol,omitempty"`

	// Count and Max bound the number of ms gates (entangler_count).
	Count *int `yaml:"count,omitempty"`
	Max   *int `yaml:"max,omitempty"`

	// Ops is the expected output, one operation string per entry (sequence).
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus         = "status"
	AssertEquivalent     = "equivalent"
	AssertNativeOnly     = "native_only"
	AssertEntanglerCount = "entangler_count"
	AssertSequence       = "sequence"
	AssertReplayMatches  = "replay_matches"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// RunOptions returns the converter options for this scenario, filling
// unset fields from defaults.
func (s *Scenario) RunOptions(defaults ir.RunOptions) ir.RunOptions {
	opts := defaults
	if s.Options.Policy != "" {
		opts.Policy = s.Options.Policy
	}
	if s.Options.Atol > 0 {
		opts.Atol = s.Options.Atol
	}
	if s.Options.VerifyAtol > 0 {
		opts.VerifyAtol = s.Options.VerifyAtol
	}
	return opts
}

// LoadCircuits loads Sources, then builds inline Circuits, in order.
func (s *Scenario) LoadCircuits() ([]*ir.Circuit, error) {
	var circuits []*ir.Circuit
	for _, src := range s.Sources {
		path := src
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		cs, err := compiler.LoadFile(path)
		if err != nil {
			return nil, err
		}
		circuits = append(circuits, cs...)
	}
	for i, spec := range s.Circuits {
		c, err := compiler.BuildCircuit(spec)
		if err != nil {
			return nil, fmt.Errorf("circuits[%d]: %w", i, err)
		}
		circuits = append(circuits, c)
	}
	return circuits, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Sources) == 0 && len(s.Circuits) == 0 {
		return fmt.Errorf("sources or circuits must be non-empty")
	}
	if s.Options.Policy != "" {
		if _, err := decompose.ParseFailurePolicy(s.Options.Policy); err != nil {
			return fmt.Errorf("options.policy: %w", err)
		}
	}
	if s.Options.Atol < 0 || s.Options.VerifyAtol < 0 {
		return fmt.Errorf("options: tolerances must not be negative")
	}

	names := make(map[string]bool, len(s.Circuits))
	for i, c := range s.Circuits {
		if c.Name == "" {
			return fmt.Errorf("circuits[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("circuits[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, s.Replay); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion, replay bool) error {
	switch a.Type {
	case AssertStatus:
		if a.Status != ir.RunOK && a.Status != ir.RunError {
			return fmt.Errorf("status must be %q or %q", ir.RunOK, ir.RunError)
		}
	case AssertEquivalent:
		if a.Atol < 0 {
			return fmt.Errorf("atol must not be negative")
		}
	case AssertNativeOnly:
	case AssertEntanglerCount:
		if (a.Count == nil) == (a.Max == nil) {
			return fmt.Errorf("entangler_count requires exactly one of count or max")
		}
	case AssertSequence:
		if a.Circuit == "" {
			return fmt.Errorf("sequence requires a circuit")
		}
	case AssertReplayMatches:
		if !replay {
			return fmt.Errorf("replay_matches requires replay: true")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
