// Package report provides JSON-based run reporting with live updates.
//
// Architecture:
//   - report.json: Main index file (small, frequently updated, mutex-protected)
//   - jobs/job-XXX.json: Per-instance detail files (owned by one goroutine each)
//
// The index file is the single source of truth for status and change
// tracking. Consumers poll report.json and fetch changed job details as
// needed.
package report

import "time"

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// ============================================================================
// INDEX (report.json)
// ============================================================================

// Index is the main report file that binds everything together.
type Index struct {
	Version     string     `json:"version"`
	UpdateSeq   uint64     `json:"updateSeq"`
	Status      Status     `json:"status"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Pipeline    string     `json:"pipeline"`
	Event       EventInfo  `json:"event"`
	Orchestrator RunnerInfo `json:"orchestrator"`
	Summary     Summary    `json:"summary"`
	Jobs        []JobEntry `json:"jobs"`
}

// EventInfo describes the event that triggered the run.
type EventInfo struct {
	Kind   string `json:"kind"`
	Branch string `json:"branch,omitempty"`
}

// RunnerInfo contains orchestrator information.
type RunnerInfo struct {
	Version string `json:"version"`
	Runner  string `json:"runner"` // shell, mock
}

// Summary contains aggregated instance counts.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Cancelled int `json:"cancelled"`
	Running   int `json:"running"`
	Pending   int `json:"pending"`
}

// JobEntry is the index entry for a job instance (minimal info).
type JobEntry struct {
	Index       int        `json:"index"` // Original position
	ID          string     `json:"id"`    // job-000, job-001, ...
	Name        string     `json:"name"`  // Job definition name
	Label       string     `json:"label"` // Instance label incl. matrix point
	DataFile    string     `json:"dataFile"`
	Status      Status     `json:"status"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Duration    *int64     `json:"duration,omitempty"` // Milliseconds
	Steps       StepCounts `json:"steps"`
	Error       *string    `json:"error,omitempty"`
	UpdateSeq   uint64     `json:"updateSeq"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// StepCounts summarizes step progress for an instance.
type StepCounts struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Running   int  `json:"running"`
	Pending   int  `json:"pending"`
	Current   *int `json:"current,omitempty"` // Index of the running step
}

// JobUpdate carries an index update for one instance.
type JobUpdate struct {
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *int64
	Steps     StepCounts
	Error     *string
}

// ============================================================================
// JOB DETAIL (jobs/job-XXX.json)
// ============================================================================

// JobDetail is the per-instance detail file.
type JobDetail struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	RunsOn    string      `json:"runsOn,omitempty"`
	Matrix    map[string]string `json:"matrix,omitempty"`
	StartTime time.Time   `json:"startTime"`
	EndTime   *time.Time  `json:"endTime,omitempty"`
	Duration  *int64      `json:"duration,omitempty"`
	Steps     []StepEntry `json:"steps"`
}

// StepEntry records one step's outcome inside a job detail file.
type StepEntry struct {
	ID        string     `json:"id"` // step-000, step-001, ...
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	Command   string     `json:"command,omitempty"` // run command or uses ref
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  *int64     `json:"duration,omitempty"`
	ExitCode  *int       `json:"exitCode,omitempty"`
	Output    string     `json:"output,omitempty"`
	Error     *string    `json:"error,omitempty"`
}
