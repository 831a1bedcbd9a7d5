package ir

// NOTE: Run records are store-layer types, not part of the circuit IR.
// Floats in RunOptions are hashed through FormatParam like gate params.

// Run status values.
const (
	RunOK    = "ok"
	RunError = "error"
)

// RunOptions captures the converter settings a run was made with. Replay
// rebuilds the converter from these.
type RunOptions struct {
	Policy        string  `json:"policy"`                   // "fail" or "pass-through"
	Atol          float64 `json:"atol"`                     // synthesis tolerance
	VerifyAtol    float64 `json:"verify_atol"`              // zero when verification is off
	UnitarityAtol float64 `json:"unitarity_atol,omitempty"` // zero means the converter default
}

// RunStats summarizes a conversion.
type RunStats struct {
	OpsIn         int `json:"ops_in"`
	OpsOut        int `json:"ops_out"`
	Entanglers    int `json:"entanglers"`     // ms gates in the output
	PassedThrough int `json:"passed_through"` // non-native ops kept by PassThrough
}

// Run is one recorded conversion of a circuit.
type Run struct {
	ID            string     `json:"id"`  // UUIDv7
	Seq           int64      `json:"seq"` // Logical clock
	CircuitName   string     `json:"circuit_name"`
	Input         *Circuit   `json:"input"`
	InputHash     string     `json:"input_hash"`
	Options       RunOptions `json:"options"`
	Status        string     `json:"status"`
	Output        *Circuit   `json:"output,omitempty"`
	OutputHash    string     `json:"output_hash,omitempty"`
	Error         string     `json:"error,omitempty"`
	Stats         RunStats   `json:"stats"`
	EngineVersion string     `json:"engine_version"`
	IRVersion     string     `json:"ir_version"`
}

// Replay is the outcome of re-running a stored conversion.
type Replay struct {
	ID         int64  `json:"id"` // Auto-increment (store FK)
	RunID      string `json:"run_id"`
	Seq        int64  `json:"seq"`
	Status     string `json:"status"`
	OutputHash string `json:"output_hash,omitempty"`
	Matched    bool   `json:"matched"`
}

// RunOptionsValue returns the canonical form of opts. unitarity_atol is
// omitted when zero.
func RunOptionsValue(opts RunOptions) Object {
	v := Object{
		"policy":      Str(opts.Policy),
		"atol":        Str(FormatParam(opts.Atol)),
		"verify_atol": Str(FormatParam(opts.VerifyAtol)),
	}
	if opts.UnitarityAtol != 0 {
		v["unitarity_atol"] = Str(FormatParam(opts.UnitarityAtol))
	}
	return v
}
