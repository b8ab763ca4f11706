package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	e := &ExecutionError{Category: ErrCategoryStep, Code: "step_failed", Message: "step command exited non-zero"}
	if got := e.Error(); got != "step command exited non-zero" {
		t.Errorf("Error() = %q", got)
	}

	withCause := e.WithCause(errors.New("exit status 1"))
	want := "step command exited non-zero: exit status 1"
	if got := withCause.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := ErrWorkspaceSetup.WithCause(cause)
	if !errors.Is(e, cause) {
		t.Error("errors.Is(e, cause) = false, want true")
	}
}

func TestExecutionError_Is(t *testing.T) {
	wrapped := fmt.Errorf("job lint: %w", ErrStepFailed.WithCause(errors.New("exit status 2")))
	if !errors.Is(wrapped, ErrStepFailed) {
		t.Error("errors.Is(wrapped, ErrStepFailed) = false, want true")
	}
	if errors.Is(wrapped, ErrEmptyAxis) {
		t.Error("errors.Is(wrapped, ErrEmptyAxis) = true, want false")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	e := ErrDuplicateJob.WithMessage(`jobs "test (ubuntu-latest)" declared twice`)
	if e.Code != ErrDuplicateJob.Code {
		t.Errorf("Code = %q, want %q", e.Code, ErrDuplicateJob.Code)
	}
	if e.Message == ErrDuplicateJob.Message {
		t.Error("WithMessage did not replace the message")
	}
	if !errors.Is(e, ErrDuplicateJob) {
		t.Error("errors.Is(e, ErrDuplicateJob) = false, want true")
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryConfig, "config"},
		{ErrCategoryStep, "step"},
		{ErrCategoryEnvironment, "environment"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryCancelled, "cancelled"},
	}
	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
