package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected by the engine itself, as
// opposed to a conversion failure, which is recorded on the run.
//
// Runtime errors include:
//   - Quota exceeded: circuit has more operations than the engine accepts
//   - Invalid options: run options name an unknown failure policy
//   - No store: replay requested without a conversion log
//   - Run not found: replay of an unknown run ID
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, when there is one.
	RunID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeQuotaExceeded indicates the circuit exceeded the ops quota.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeInvalidOptions indicates the run options cannot build a converter.
	ErrCodeInvalidOptions RuntimeErrorCode = "INVALID_OPTIONS"

	// ErrCodeNoStore indicates an operation that needs a store ran without one.
	ErrCodeNoStore RuntimeErrorCode = "NO_STORE"

	// ErrCodeRunNotFound indicates a run ID missing from the store.
	ErrCodeRunNotFound RuntimeErrorCode = "RUN_NOT_FOUND"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	return hasCode(err, ErrCodeQuotaExceeded)
}

// IsNotFound returns true if the error reports an unknown run ID.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeRunNotFound)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewQuotaError creates a RuntimeError for quota exceeded.
func NewQuotaError(runID string, ops, maxOps int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("circuit exceeded max operations (%d > %d)", ops, maxOps),
		RunID:   runID,
		Details: map[string]string{
			"ops":     fmt.Sprintf("%d", ops),
			"max_ops": fmt.Sprintf("%d", maxOps),
		},
	}
}
