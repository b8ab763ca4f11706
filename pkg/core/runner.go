package core

import (
	"context"
	"time"

	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// Workspace is the execution environment a job instance owns exclusively
// for its lifetime. Secrets and env are read-only inputs injected at
// acquisition time.
type Workspace struct {
	Dir     string            // Working directory (clean checkout)
	RunsOn  string            // Platform identifier from the job definition
	Env     map[string]string // Merged job + matrix-point environment
	Secrets map[string]string // Secret values, never logged
}

// StepRunner executes a single step command inside an acquired workspace.
// Implementations: shell (local sh), mocks in tests. The executor handles
// ordering, fail-fast, and status; the runner just executes one command.
type StepRunner interface {
	// Execute runs a single step and returns the result
	Execute(ctx context.Context, step pipeline.Step, ws *Workspace) *CommandResult

	// ResolveAction reports whether a `uses:` action reference is known.
	// A non-nil error is a configuration error detected before any job runs.
	ResolveAction(ref string) error
}

// Provisioner acquires and releases per-job execution environments.
type Provisioner interface {
	// Acquire sets up a workspace for one instance of the given job
	Acquire(ctx context.Context, job pipeline.Job, label string) (*Workspace, error)

	// Release tears down the workspace. Called on every exit path.
	Release(ws *Workspace) error
}

// CommandResult represents the outcome of executing a single step command
type CommandResult struct {
	// Core outcome
	Success  bool          `json:"success"`
	Error    error         `json:"-"`
	Duration time.Duration `json:"duration"`

	// Process exit code (0 on success, -1 if the command never ran)
	ExitCode int `json:"exitCode"`

	// Combined stdout/stderr, truncated by the runner
	Output string `json:"output,omitempty"`

	// Human-readable explanation
	Message string `json:"message,omitempty"`
}
