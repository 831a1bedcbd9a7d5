package ir

// Version constants for the circuit schema and converter.
const (
	// IRVersion is the circuit schema version.
	IRVersion = "1"

	// EngineVersion is the ionc converter version.
	EngineVersion = "0.1.0"
)
