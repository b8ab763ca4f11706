package report

import (
	"path/filepath"
	"sync"
	"time"
)

// IndexWriter provides thread-safe updates to the report index.
// Multiple job goroutines can update the index concurrently.
type IndexWriter struct {
	mu    sync.Mutex
	path  string
	index *Index

	// Debouncing for progress updates
	pending map[string]*JobUpdate
	timer   *time.Timer
}

// NewIndexWriter creates a new IndexWriter.
func NewIndexWriter(outputDir string, index *Index) *IndexWriter {
	return &IndexWriter{
		path:    filepath.Join(outputDir, "report.json"),
		index:   index,
		pending: make(map[string]*JobUpdate),
	}
}

// Start marks the run as started.
func (w *IndexWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.Status = StatusRunning
	w.index.StartTime = now
	w.index.LastUpdated = now

	w.flushLocked()
}

// UpdateJob updates a job entry in the index.
// Terminal states flush immediately; progress updates are debounced to
// reduce I/O.
func (w *IndexWriter) UpdateJob(jobID string, update *JobUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[jobID] = update

	if update.Status.IsTerminal() {
		w.flushLocked()
		return
	}

	if w.timer == nil {
		w.timer = time.AfterFunc(100*time.Millisecond, func() {
			w.flush()
		})
	}
}

// End marks the run as complete.
func (w *IndexWriter) End() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.EndTime = &now
	w.index.LastUpdated = now
	w.index.Status = w.computeRunStatus()

	w.flushLocked()
}

// Close flushes any pending updates.
func (w *IndexWriter) Close() {
	w.flush()
}

// GetIndex returns the current index (for reading).
func (w *IndexWriter) GetIndex() *Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// flush applies pending updates and writes to disk.
func (w *IndexWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

// flushLocked flushes while holding the lock.
func (w *IndexWriter) flushLocked() {
	for jobID, update := range w.pending {
		w.applyUpdate(jobID, update)
	}
	w.pending = make(map[string]*JobUpdate)

	w.index.UpdateSeq++
	w.index.LastUpdated = time.Now()
	w.index.Summary = w.computeSummary()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	atomicWriteJSON(w.path, w.index)
}

// applyUpdate applies a JobUpdate to the index.
func (w *IndexWriter) applyUpdate(jobID string, update *JobUpdate) {
	for i := range w.index.Jobs {
		if w.index.Jobs[i].ID != jobID {
			continue
		}
		j := &w.index.Jobs[i]
		j.Status = update.Status
		if update.StartTime != nil {
			j.StartTime = update.StartTime
		}
		if update.EndTime != nil {
			j.EndTime = update.EndTime
		}
		if update.Duration != nil {
			j.Duration = update.Duration
		}
		j.Steps = update.Steps
		if update.Error != nil {
			j.Error = update.Error
		}
		j.UpdateSeq++
		now := time.Now()
		j.LastUpdated = &now
		break
	}
}

// computeSummary calculates the summary from instance statuses.
func (w *IndexWriter) computeSummary() Summary {
	var s Summary
	for _, j := range w.index.Jobs {
		s.Total++
		switch j.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusCancelled:
			s.Cancelled++
		case StatusRunning:
			s.Running++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// computeRunStatus determines the overall run status from instances.
// Cancelled instances count as failures.
func (w *IndexWriter) computeRunStatus() Status {
	hasFailure := false
	allComplete := true

	for _, j := range w.index.Jobs {
		if j.Status == StatusFailed || j.Status == StatusCancelled {
			hasFailure = true
		}
		if !j.Status.IsTerminal() {
			allComplete = false
		}
	}

	if !allComplete {
		return StatusRunning
	}
	if hasFailure {
		return StatusFailed
	}
	return StatusSucceeded
}
