// Package executor orchestrates pipeline runs: it expands job
// definitions into instances, schedules them concurrently, and
// aggregates their terminal statuses into one run verdict.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/logger"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
	"github.com/conveyor-ci/conveyor/pkg/report"
)

// RunnerConfig configures the pipeline runner.
type RunnerConfig struct {
	OutputDir   string // Report output directory
	Parallelism int    // Max concurrent instances (0 = sequential)
	StopOnFail  bool   // Cancel remaining instances on first failure

	// Orchestrator metadata for reports
	Version    string
	RunnerName string

	// Live progress callbacks
	OnJobStart     func(jobIdx, totalJobs int, name, label string)
	OnStepComplete func(jobLabel string, stepIdx int, desc string, passed bool, durationMs int64, errMsg string)
	OnJobEnd       func(label string, passed bool, durationMs int64)
}

// Runner orchestrates the execution of one pipeline run.
type Runner struct {
	config      RunnerConfig
	runner      core.StepRunner
	provisioner core.Provisioner
}

// New creates a new Runner.
func New(stepRunner core.StepRunner, provisioner core.Provisioner, cfg RunnerConfig) *Runner {
	return &Runner{
		config:      cfg,
		runner:      stepRunner,
		provisioner: provisioner,
	}
}

// Run expands the pipeline into instances, executes them, and returns
// the aggregated result. Configuration errors (bad matrix, duplicate
// identity, unknown action) are returned before any job runs.
func (r *Runner) Run(ctx context.Context, p *pipeline.Pipeline, ev pipeline.Event) (*core.RunResult, error) {
	instances, err := BuildInstances(p)
	if err != nil {
		return nil, err
	}
	if err := ValidateActions(instances, r.runner); err != nil {
		return nil, err
	}

	// Build and persist the report skeleton before execution starts.
	jobs := make([]report.JobInfo, len(instances))
	for i, inst := range instances {
		jobs[i] = report.JobInfo{
			Name:   inst.Job.Name,
			Label:  inst.Label,
			RunsOn: inst.Job.RunsOn,
			Matrix: inst.Point,
			Steps:  inst.Job.Steps,
		}
	}

	index, details := report.BuildSkeleton(jobs, report.BuilderConfig{
		OutputDir:  r.config.OutputDir,
		Pipeline:   p.Name,
		Event:      report.EventInfo{Kind: ev.Kind, Branch: ev.Branch},
		Version:    r.config.Version,
		RunnerName: r.config.RunnerName,
	})
	if err := report.WriteSkeleton(r.config.OutputDir, index, details); err != nil {
		return nil, err
	}

	indexWriter := report.NewIndexWriter(r.config.OutputDir, index)
	defer indexWriter.Close()
	indexWriter.Start()

	start := time.Now()
	results := r.executeInstances(ctx, instances, details, indexWriter)
	indexWriter.End()

	run := &core.RunResult{
		Pipeline:    p.Name,
		RunID:       uuid.New().String(),
		EventKind:   ev.Kind,
		EventBranch: ev.Branch,
		StartTime:   start,
		Duration:    time.Since(start),
		Jobs:        results,
	}
	run.ComputeSummary()
	if run.Success() {
		run.Status = core.StatusSucceeded
	} else {
		run.Status = core.StatusFailed
	}

	logger.Info("run complete: %s (%d succeeded, %d failed, %d cancelled, %d skipped)",
		run.Status, run.SucceededJobs, run.FailedJobs, run.CancelledJobs, run.SkippedJobs)

	return run, nil
}

// executeInstances runs instances sequentially or in parallel. Instances
// are mutually independent; the only coordination is the join and,
// optionally, the stop-on-fail broadcast.
func (r *Runner) executeInstances(ctx context.Context, instances []Instance, details []report.JobDetail, indexWriter *report.IndexWriter) []core.JobResult {
	results := make([]core.JobResult, len(instances))
	totalJobs := len(instances)

	runCtx := ctx
	var cancelRun context.CancelFunc
	if r.config.StopOnFail {
		runCtx, cancelRun = context.WithCancel(ctx)
		defer cancelRun()
	}

	skip := func(i int, reason string) {
		results[i] = core.JobResult{
			Name:   instances[i].Job.Name,
			Label:  instances[i].Label,
			Status: core.StatusSkipped,
			Error:  reason,
		}
		msg := reason
		n := len(instances[i].Job.Steps)
		indexWriter.UpdateJob(details[i].ID, &report.JobUpdate{
			Status: report.StatusSkipped,
			Steps:  report.StepCounts{Total: n, Skipped: n},
			Error:  &msg,
		})
	}

	if r.config.Parallelism <= 0 {
		// Sequential execution
		for i := range instances {
			if runCtx.Err() != nil {
				skip(i, "run cancelled")
				continue
			}
			results[i] = r.executeInstance(runCtx, instances[i], &details[i], indexWriter, i, totalJobs)
			if r.config.StopOnFail && !results[i].Status.IsSuccess() {
				cancelRun()
			}
		}
		return results
	}

	// Parallel execution with semaphore
	sem := make(chan struct{}, r.config.Parallelism)
	var wg sync.WaitGroup

	for i := range instances {
		if runCtx.Err() != nil {
			skip(i, "run stopped")
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			if runCtx.Err() != nil {
				skip(idx, "run stopped")
				return
			}

			result := r.executeInstance(runCtx, instances[idx], &details[idx], indexWriter, idx, totalJobs)
			results[idx] = result

			if r.config.StopOnFail && !result.Status.IsSuccess() {
				cancelRun()
			}
		}(i)
	}
	wg.Wait()

	return results
}

// executeInstance runs a single instance.
func (r *Runner) executeInstance(ctx context.Context, inst Instance, detail *report.JobDetail, indexWriter *report.IndexWriter, jobIdx, totalJobs int) core.JobResult {
	jr := &JobRunner{
		ctx:         ctx,
		instance:    inst,
		detail:      detail,
		runner:      r.runner,
		provisioner: r.provisioner,
		config:      r.config,
		indexWriter: indexWriter,
		jobIdx:      jobIdx,
		totalJobs:   totalJobs,
	}
	return jr.Run()
}
