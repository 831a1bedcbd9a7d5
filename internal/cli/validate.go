package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/ionc/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Native bool // also require every operation to be native
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Circuits int                        `json:"circuits"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate circuits without converting them",
		Long: `Validate circuits against the gate vocabulary: known gate names, qubit
and parameter counts, custom matrix shape and unitarity, and measurement
placement. With --native, also require every operation to be in the
trapped-ion gate set, which checks converted output.

Exit codes:
  0 - All circuits valid
  1 - Validation errors found
  2 - Command error (invalid paths, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Native, "native", false, "require native operations only (E120)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	errs, circuits, err := ValidatePath(path, opts.Native, formatter)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, circuits, errs)
	}
	return outputValidateSuccess(formatter, circuits)
}

// ValidatePath loads every circuit under path and validates it. Compile
// errors are reported as validation errors alongside vocabulary errors;
// err is set only when nothing could be loaded.
func ValidatePath(path string, native bool, formatter *OutputFormatter) (errs []compiler.ValidationError, circuits int, err error) {
	loaded, loadErrs := LoadCircuits(path, LoadModeCollectAll)
	if loaded == nil && len(loadErrs) > 0 {
		return nil, 0, loadErrs[0]
	}
	formatter.VerboseLog("Found %d file(s) in %s", loaded.FileCount, path)

	for _, le := range loadErrs {
		var loadErr *LoadError
		if errors.As(le, &loadErr) {
			errs = append(errs, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineOf(loadErr.Pos),
			})
			continue
		}
		errs = append(errs, compiler.ValidationError{Field: "load", Message: le.Error(), Code: ErrCodeGeneric})
	}

	for _, c := range loaded.Circuits {
		formatter.VerboseLog("Validating circuit: %s", c.Name)
		for _, ve := range compiler.Validate(c) {
			ve.Field = c.Name + "." + ve.Field
			errs = append(errs, ve)
		}
		if native {
			for _, ve := range compiler.ValidateNative(c) {
				ve.Field = c.Name + "." + ve.Field
				errs = append(errs, ve)
			}
		}
	}
	return errs, len(loaded.Circuits), nil
}

// lineOf extracts the line number from a CUE position.
func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, circuits int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Circuits: circuits})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d circuit(s) valid\n", circuits)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, circuits int, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:    false,
				Circuits: circuits,
				Errors:   errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
