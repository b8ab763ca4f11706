package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string // Machine-readable code: empty_axis, step_failed, etc.
	Message  string // Human-readable message
	Cause    error  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the same predefined error. Predefined
// errors are compared by code so wrapped copies still match.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Configuration errors (fatal before any job runs)
	ErrEmptyAxis = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "empty_axis",
		Message:  "matrix axis has no values",
	}
	ErrDuplicateJob = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "duplicate_job",
		Message:  "duplicate job identity",
	}
	ErrUnknownAction = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_action",
		Message:  "step references an unknown action",
	}
	ErrNoCommand = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "no_command",
		Message:  "step declares neither run nor uses",
	}

	// Step errors (recovered within the job instance)
	ErrStepFailed = &ExecutionError{
		Category: ErrCategoryStep,
		Code:     "step_failed",
		Message:  "step command exited non-zero",
	}
	ErrStepTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "step_timeout",
		Message:  "step exceeded its timeout",
	}

	// Environment errors (fail the instance, never crash the run)
	ErrWorkspaceSetup = &ExecutionError{
		Category: ErrCategoryEnvironment,
		Code:     "workspace_setup",
		Message:  "failed to acquire job workspace",
	}
	ErrWorkspaceTeardown = &ExecutionError{
		Category: ErrCategoryEnvironment,
		Code:     "workspace_teardown",
		Message:  "failed to release job workspace",
	}

	// Cancellation
	ErrCancelled = &ExecutionError{
		Category: ErrCategoryCancelled,
		Code:     "cancelled",
		Message:  "execution cancelled",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
