package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// JobInfo describes one job instance to be reported on. The executor
// builds these from its expanded instances before the run starts.
type JobInfo struct {
	Name   string            // Job definition name
	Label  string            // Instance label incl. matrix point
	RunsOn string            // Platform identifier
	Matrix map[string]string // Matrix-point bindings, nil when unparameterized
	Steps  []pipeline.Step   // Copied step sequence
}

// BuilderConfig contains configuration for building the report skeleton.
type BuilderConfig struct {
	OutputDir  string    // Base output directory for reports
	Pipeline   string    // Pipeline display name
	Event      EventInfo // Triggering event
	Version    string    // Orchestrator version
	RunnerName string    // Step runner name (shell, mock)
}

// BuildSkeleton creates the initial report structure from expanded job
// instances. All instances and steps start out "pending". Called after
// validation, before execution starts.
func BuildSkeleton(jobs []JobInfo, cfg BuilderConfig) (*Index, []JobDetail) {
	now := time.Now()

	index := &Index{
		Version:     Version,
		UpdateSeq:   0,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Pipeline:    cfg.Pipeline,
		Event:       cfg.Event,
		Orchestrator: RunnerInfo{
			Version: cfg.Version,
			Runner:  cfg.RunnerName,
		},
		Summary: Summary{
			Total:   len(jobs),
			Pending: len(jobs),
		},
		Jobs: make([]JobEntry, len(jobs)),
	}

	details := make([]JobDetail, len(jobs))

	for i, job := range jobs {
		jobID := fmt.Sprintf("job-%03d", i)

		steps := make([]StepEntry, len(job.Steps))
		for k, step := range job.Steps {
			command := step.Run
			if command == "" {
				command = step.Uses
			}
			steps[k] = StepEntry{
				ID:      fmt.Sprintf("step-%03d", k),
				Index:   k,
				Name:    step.Describe(),
				Command: command,
				Status:  StatusPending,
			}
		}

		index.Jobs[i] = JobEntry{
			Index:    i,
			ID:       jobID,
			Name:     job.Name,
			Label:    job.Label,
			DataFile: filepath.Join("jobs", jobID+".json"),
			Status:   StatusPending,
			Steps: StepCounts{
				Total:   len(steps),
				Pending: len(steps),
			},
		}

		details[i] = JobDetail{
			ID:     jobID,
			Name:   job.Name,
			Label:  job.Label,
			RunsOn: job.RunsOn,
			Matrix: job.Matrix,
			Steps:  steps,
		}
	}

	return index, details
}

// WriteSkeleton writes the initial skeleton to disk: report.json and all
// job detail files with pending status.
func WriteSkeleton(outputDir string, index *Index, details []JobDetail) error {
	if err := ensureDir(filepath.Join(outputDir, "jobs")); err != nil {
		return fmt.Errorf("create jobs dir: %w", err)
	}

	for _, jd := range details {
		jobPath := filepath.Join(outputDir, "jobs", jd.ID+".json")
		if err := atomicWriteJSON(jobPath, jd); err != nil {
			return fmt.Errorf("write job %s: %w", jd.ID, err)
		}
	}

	indexPath := filepath.Join(outputDir, "report.json")
	if err := atomicWriteJSON(indexPath, index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

// ensureDir creates the directory if it does not exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// atomicWriteJSON writes JSON via a temp file and rename so readers never
// observe a partially written file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
