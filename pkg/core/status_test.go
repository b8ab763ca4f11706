package core

import (
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusSucceeded, "succeeded"},
		{StatusFailed, "failed"},
		{StatusSkipped, "skipped"},
		{StatusCancelled, "cancelled"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := []Status{StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = false, want true", s)
		}
	}

	nonTerminal := []Status{StatusPending, StatusRunning}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = true, want false", s)
		}
	}
}

func TestStatus_IsSuccess(t *testing.T) {
	if !StatusSucceeded.IsSuccess() {
		t.Error("StatusSucceeded.IsSuccess() = false, want true")
	}
	for _, s := range []Status{StatusFailed, StatusCancelled, StatusSkipped, StatusPending, StatusRunning} {
		if s.IsSuccess() {
			t.Errorf("%v.IsSuccess() = true, want false", s)
		}
	}
}
