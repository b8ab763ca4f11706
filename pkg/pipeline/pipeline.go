// Package pipeline handles parsing and representation of declarative CI
// pipeline files.
package pipeline

// Pipeline represents a parsed pipeline file.
type Pipeline struct {
	SourcePath string    // Path to the source file
	Name       string    // Display name
	Triggers   []Trigger // Events that start a run
	Jobs       []Job     // Jobs in declaration order
}

// Trigger maps an event kind to an optional branch filter.
type Trigger struct {
	Kind     string   // push, pull_request, ...
	Branches []string // Allowed branches; empty means any
}

// Job is a named unit of work, optionally parameterized by a matrix.
type Job struct {
	Name   string            // Key under jobs:
	RunsOn string            // Platform identifier, opaque to the orchestrator
	Env    map[string]string // Job-level environment
	Matrix *Matrix           // Optional parameterization
	Steps  []Step            // Steps in declaration order
}

// Step is one action within a job. Exactly one of Run or Uses is set.
type Step struct {
	Name            string            // Display name, defaults to Run or Uses
	Run             string            // Shell command
	Uses            string            // Action reference, resolved by the runner
	With            map[string]string // Action input parameters
	Env             map[string]string // Step-level environment (may hold secret refs)
	ContinueOnError bool              // Failure does not fail the job
	TimeoutMinutes  int               // 0 means no per-step timeout
}

// Describe returns a human-readable description of the step.
func (s Step) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Uses != "" {
		return s.Uses
	}
	return s.Run
}

// Matrixed returns true if the job declares a matrix.
func (j Job) Matrixed() bool {
	return j.Matrix != nil && len(j.Matrix.Axes) > 0
}
