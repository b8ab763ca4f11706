// Package store persists run history so past runs can be listed and
// inspected after the process exits.
package store

import (
	"time"

	"github.com/conveyor-ci/conveyor/pkg/core"
)

// RunRecord is the persisted form of one pipeline run.
type RunRecord struct {
	ID          string    `json:"id"`
	Pipeline    string    `json:"pipeline"`
	EventKind   string    `json:"eventKind"`
	EventBranch string    `json:"eventBranch,omitempty"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"startTime"`
	DurationMs  int64     `json:"durationMs"`

	// Summary
	TotalJobs     int `json:"totalJobs"`
	SucceededJobs int `json:"succeededJobs"`
	FailedJobs    int `json:"failedJobs"`
	CancelledJobs int `json:"cancelledJobs"`
	SkippedJobs   int `json:"skippedJobs"`

	Jobs []JobRecord `json:"jobs"`

	CreatedAt time.Time `json:"createdAt"`
}

// JobRecord is the persisted form of one job instance within a run.
type JobRecord struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Status     string `json:"status"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Store persists and retrieves run records.
type Store interface {
	// SaveRun persists a completed run
	SaveRun(rec *RunRecord) error

	// GetRun retrieves one run by ID
	GetRun(id string) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first. An empty
	// pipeline matches all pipelines; limit <= 0 means no limit.
	ListRuns(pipeline string, limit int) ([]*RunRecord, error)

	// Close releases the underlying storage
	Close() error
}

// FromResult converts a finished run result into its persisted form.
func FromResult(r *core.RunResult) *RunRecord {
	rec := &RunRecord{
		ID:            r.RunID,
		Pipeline:      r.Pipeline,
		EventKind:     r.EventKind,
		EventBranch:   r.EventBranch,
		Status:        r.Status.String(),
		StartTime:     r.StartTime,
		DurationMs:    r.Duration.Milliseconds(),
		TotalJobs:     r.TotalJobs,
		SucceededJobs: r.SucceededJobs,
		FailedJobs:    r.FailedJobs,
		CancelledJobs: r.CancelledJobs,
		SkippedJobs:   r.SkippedJobs,
		Jobs:          make([]JobRecord, len(r.Jobs)),
	}
	for i, job := range r.Jobs {
		rec.Jobs[i] = JobRecord{
			Name:       job.Name,
			Label:      job.Label,
			Status:     job.Status.String(),
			DurationMs: job.Duration.Milliseconds(),
			Error:      job.Error,
		}
	}
	return rec
}
