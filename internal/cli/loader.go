package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ionc/internal/compiler"
	"github.com/roach88/ionc/internal/ir"
)

// LoadMode controls how errors are handled during circuit loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the circuits loaded from a path.
type LoadResult struct {
	Circuits  []*ir.Circuit
	FileCount int // Number of source files read
}

// LoadError represents an error that occurred during circuit loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCircuits loads circuits from a CUE directory or .cue file (every
// field of the top-level "circuit" struct), or from a YAML or JSON
// circuit file.
func LoadCircuits(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}}
	}

	if info.IsDir() {
		return loadCUE(path, ".", mode)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loadCUE(filepath.Dir(path), "./"+filepath.Base(path), mode)
	case ".yaml", ".yml", ".json":
		circuits, err := compiler.LoadFile(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}}
		}
		return &LoadResult{Circuits: circuits, FileCount: 1}, nil
	default:
		return nil, []error{&LoadError{
			Code:    ErrCodeNoFiles,
			Message: fmt.Sprintf("unsupported circuit file %s: want a directory, .cue, .yaml, .yml or .json", path),
		}}
	}
}

func loadCUE(dir, arg string, mode LoadMode) (*LoadResult, []error) {
	fileCount := 1
	if arg == "." {
		cueFiles, err := FindCUEFiles(dir)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(cueFiles) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
		}
		fileCount = len(cueFiles)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: fileCount}
	var errs []error

	circuitsVal := value.LookupPath(cue.ParsePath("circuit"))
	if !circuitsVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no circuit struct found"}}
	}
	iter, err := circuitsVal.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating circuits: %v", err)}}
	}
	for iter.Next() {
		c, err := compiler.CompileCircuit(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "circuit."+iter.Label()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Circuits = append(result.Circuits, c)
	}

	if len(result.Circuits) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no circuits found"})
	}
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No circuit files found
	ErrCodeLoadFailed  = "E004" // Circuit file load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database error

	ErrCodeConversion = "E200" // Circuit conversion failed
	ErrCodeReplay     = "E201" // Replay did not reproduce a run
	ErrCodeTestFailed = "E202" // Scenario failed
)

// MapFieldToErrorCode maps a compile error field ("ops[2].qubits[0]") to
// the matching validation code.
func MapFieldToErrorCode(field string) string {
	last := field
	if i := strings.LastIndex(field, "."); i >= 0 {
		last = field[i+1:]
	}
	if i := strings.Index(last, "["); i >= 0 {
		last = last[:i]
	}
	switch last {
	case "ops":
		return compiler.ErrCircuitEmpty
	case "gate":
		return compiler.ErrOpaqueGate
	case "qubits":
		return compiler.ErrArityMismatch
	case "params":
		return compiler.ErrParamCount
	case "matrix":
		return compiler.ErrMatrixShape
	default:
		return ErrCodeGeneric
	}
}
