package report

import (
	"path/filepath"
	"time"
)

// JobWriter writes updates for a single job instance.
// Each instance goroutine has its own JobWriter, so no locking is needed
// on the detail file; index updates go through the shared IndexWriter.
type JobWriter struct {
	job   *JobDetail
	path  string
	index *IndexWriter
}

// NewJobWriter creates a new JobWriter for an instance.
func NewJobWriter(detail *JobDetail, outputDir string, index *IndexWriter) *JobWriter {
	return &JobWriter{
		job:   detail,
		path:  filepath.Join(outputDir, "jobs", detail.ID+".json"),
		index: index,
	}
}

// Start marks the instance as started.
func (w *JobWriter) Start() {
	now := time.Now()
	w.job.StartTime = now

	w.flush()
	w.index.UpdateJob(w.job.ID, &JobUpdate{
		Status:    StatusRunning,
		StartTime: &now,
		Steps:     w.stepCounts(),
	})
}

// StepStart marks a step as started.
func (w *JobWriter) StepStart(stepIndex int) {
	if stepIndex < 0 || stepIndex >= len(w.job.Steps) {
		return
	}

	now := time.Now()
	step := &w.job.Steps[stepIndex]
	step.Status = StatusRunning
	step.StartTime = &now

	w.flush()
	w.index.UpdateJob(w.job.ID, &JobUpdate{
		Status: StatusRunning,
		Steps:  w.stepCounts(),
	})
}

// StepEnd marks a step as complete.
func (w *JobWriter) StepEnd(stepIndex int, status Status, exitCode int, output string, errMsg string) {
	if stepIndex < 0 || stepIndex >= len(w.job.Steps) {
		return
	}

	now := time.Now()
	step := &w.job.Steps[stepIndex]
	step.Status = status
	step.EndTime = &now

	if step.StartTime != nil {
		duration := now.Sub(*step.StartTime).Milliseconds()
		step.Duration = &duration
	}

	step.ExitCode = &exitCode
	step.Output = output
	if errMsg != "" {
		step.Error = &errMsg
	}

	w.flush()
	w.index.UpdateJob(w.job.ID, &JobUpdate{
		Status: StatusRunning,
		Steps:  w.stepCounts(),
	})
}

// SkipRemainingSteps marks all pending steps from the index on as skipped.
// Called after a fail-fast stop or cancellation.
func (w *JobWriter) SkipRemainingSteps(fromIndex int) {
	for i := fromIndex; i < len(w.job.Steps); i++ {
		if w.job.Steps[i].Status == StatusPending {
			w.job.Steps[i].Status = StatusSkipped
		}
	}
	w.flush()
}

// End marks the instance as complete.
func (w *JobWriter) End(status Status, errMsg string) {
	now := time.Now()
	w.job.EndTime = &now

	var duration int64
	if !w.job.StartTime.IsZero() {
		duration = now.Sub(w.job.StartTime).Milliseconds()
		w.job.Duration = &duration
	}

	w.flush()

	update := &JobUpdate{
		Status:   status,
		EndTime:  &now,
		Duration: &duration,
		Steps:    w.stepCounts(),
	}
	if errMsg != "" {
		update.Error = &errMsg
	}
	w.index.UpdateJob(w.job.ID, update)
}

// GetJobDetail returns the current job detail (for reading).
func (w *JobWriter) GetJobDetail() *JobDetail {
	return w.job
}

// flush writes the job detail to disk.
func (w *JobWriter) flush() {
	atomicWriteJSON(w.path, w.job)
}

// stepCounts computes the step summary.
func (w *JobWriter) stepCounts() StepCounts {
	var s StepCounts
	s.Total = len(w.job.Steps)

	for i, step := range w.job.Steps {
		switch step.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed, StatusCancelled:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
			idx := i
			s.Current = &idx
		case StatusPending:
			s.Pending++
		}
	}

	return s
}
