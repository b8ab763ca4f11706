package core

import (
	"time"
)

// StepResult captures the complete outcome of executing a single step
type StepResult struct {
	// Identity
	Name  string `json:"name"`
	Index int    `json:"index"` // 0-based position in the job

	// Status
	Status          Status `json:"status"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output,omitempty"`

	// Error details
	Error string `json:"error,omitempty"`
}

// JobResult captures the complete outcome of executing one job instance
type JobResult struct {
	// Identity
	Name  string `json:"name"`
	Label string `json:"label"` // Matrix-point label, equals Name when unparameterized

	// Status (aggregated from steps)
	Status Status `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps     int `json:"totalSteps"`
	SucceededSteps int `json:"succeededSteps"`
	FailedSteps    int `json:"failedSteps"`
	SkippedSteps   int `json:"skippedSteps"`

	// Error info (if the instance failed)
	Error string `json:"error,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (j *JobResult) ComputeSummary() {
	j.TotalSteps = len(j.Steps)
	j.SucceededSteps = 0
	j.FailedSteps = 0
	j.SkippedSteps = 0

	for _, step := range j.Steps {
		switch step.Status {
		case StatusSucceeded:
			j.SucceededSteps++
		case StatusFailed, StatusCancelled:
			j.FailedSteps++
		case StatusSkipped:
			j.SkippedSteps++
		}
	}
}

// AggregateStatus determines the instance status from step results.
// Rules:
//   - Any failed non-continue-on-error step → StatusFailed
//   - Any cancelled step → StatusCancelled
//   - Otherwise → StatusSucceeded (continue-on-error failures tolerated)
func (j *JobResult) AggregateStatus() Status {
	for _, step := range j.Steps {
		if step.Status == StatusCancelled {
			return StatusCancelled
		}
		if step.Status == StatusFailed && !step.ContinueOnError {
			return StatusFailed
		}
	}
	return StatusSucceeded
}

// RunResult captures the complete outcome of one pipeline run
type RunResult struct {
	// Identity
	Pipeline string `json:"pipeline"`
	RunID    string `json:"runId"`

	// Triggering event
	EventKind   string `json:"eventKind"`
	EventBranch string `json:"eventBranch,omitempty"`

	// Status
	Status Status `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Jobs []JobResult `json:"jobs"`

	// Summary
	TotalJobs     int `json:"totalJobs"`
	SucceededJobs int `json:"succeededJobs"`
	FailedJobs    int `json:"failedJobs"`
	CancelledJobs int `json:"cancelledJobs"`
	SkippedJobs   int `json:"skippedJobs"`
}

// ComputeSummary calculates job counts from the Jobs slice
func (r *RunResult) ComputeSummary() {
	r.TotalJobs = len(r.Jobs)
	r.SucceededJobs = 0
	r.FailedJobs = 0
	r.CancelledJobs = 0
	r.SkippedJobs = 0

	for _, job := range r.Jobs {
		switch job.Status {
		case StatusSucceeded:
			r.SucceededJobs++
		case StatusFailed:
			r.FailedJobs++
		case StatusCancelled:
			r.CancelledJobs++
		case StatusSkipped:
			r.SkippedJobs++
		}
	}
}

// Success returns true if every job instance succeeded
func (r *RunResult) Success() bool {
	for _, job := range r.Jobs {
		if !job.Status.IsSuccess() {
			return false
		}
	}
	return len(r.Jobs) > 0
}

// ExitCode maps the run outcome to a process exit code: 0 for success,
// 1 for any job failure (including cancellation)
func (r *RunResult) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}
