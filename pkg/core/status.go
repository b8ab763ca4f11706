package core

// Status represents the execution status of a step or job instance
type Status int

const (
	StatusPending   Status = iota // Not yet started
	StatusRunning                 // Currently executing
	StatusSucceeded               // Completed successfully
	StatusFailed                  // A command exited non-zero or the environment broke
	StatusSkipped                 // Never executed (fail-fast or trigger mismatch)
	StatusCancelled               // Aborted by an external cancellation request
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status counts as success for aggregation.
// Cancelled instances count as failures; skipped steps are neutral and
// handled by the aggregation rules, not here.
func (s Status) IsSuccess() bool {
	return s == StatusSucceeded
}

// ErrorCategory classifies the type of error for reporting and exit codes
type ErrorCategory int

const (
	ErrCategoryNone        ErrorCategory = iota // No error
	ErrCategoryConfig                           // Malformed matrix, duplicate job, unknown action
	ErrCategoryStep                             // A step command exited non-zero
	ErrCategoryEnvironment                      // Workspace acquisition or teardown failed
	ErrCategoryTimeout                          // A step exceeded its timeout
	ErrCategoryCancelled                        // Run or instance was cancelled
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryStep:
		return "step"
	case ErrCategoryEnvironment:
		return "environment"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
