package executor

import (
	"context"
	"errors"
	"time"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/logger"
	"github.com/conveyor-ci/conveyor/pkg/report"
)

// JobRunner executes a single job instance: a linear state machine over
// the instance's steps with scoped workspace acquisition and fail-fast
// sequencing.
type JobRunner struct {
	ctx         context.Context
	instance    Instance
	detail      *report.JobDetail
	runner      core.StepRunner
	provisioner core.Provisioner
	config      RunnerConfig
	indexWriter *report.IndexWriter
	jobWriter   *report.JobWriter
	jobIdx      int
	totalJobs   int
}

// Run executes the instance and returns its finalized result.
func (jr *JobRunner) Run() (result core.JobResult) {
	jobStart := time.Now()
	steps := jr.instance.Job.Steps

	result = core.JobResult{
		Name:      jr.instance.Job.Name,
		Label:     jr.instance.Label,
		StartTime: jobStart,
		Steps:     make([]core.StepResult, len(steps)),
	}
	for i, step := range steps {
		result.Steps[i] = core.StepResult{
			Name:            step.Describe(),
			Index:           i,
			Status:          core.StatusPending,
			ContinueOnError: step.ContinueOnError,
		}
	}

	jr.jobWriter = report.NewJobWriter(jr.detail, jr.config.OutputDir, jr.indexWriter)
	jr.jobWriter.Start()

	if jr.config.OnJobStart != nil {
		jr.config.OnJobStart(jr.jobIdx, jr.totalJobs, jr.instance.Job.Name, jr.instance.Label)
	}

	finish := func(status core.Status, errMsg string) core.JobResult {
		for i := range result.Steps {
			if result.Steps[i].Status == core.StatusPending {
				result.Steps[i].Status = core.StatusSkipped
			}
		}
		result.Status = status
		result.Error = errMsg
		result.Duration = time.Since(jobStart)
		result.ComputeSummary()

		jr.jobWriter.SkipRemainingSteps(0)
		jr.jobWriter.End(toReportStatus(status), errMsg)
		if jr.config.OnJobEnd != nil {
			jr.config.OnJobEnd(jr.instance.Label, status.IsSuccess(), result.Duration.Milliseconds())
		}
		return result
	}

	// Acquire the execution environment before the first step.
	ws, err := jr.provisioner.Acquire(jr.ctx, jr.instance.Job, jr.instance.Label)
	if err != nil {
		logger.Error("job %s: workspace acquisition failed: %v", jr.instance.Label, err)
		if errors.Is(err, core.ErrCancelled) {
			return finish(core.StatusCancelled, err.Error())
		}
		return finish(core.StatusFailed, err.Error())
	}

	// Teardown runs on every exit path. A teardown failure downgrades an
	// otherwise successful instance to failed.
	defer func() {
		if relErr := jr.provisioner.Release(ws); relErr != nil {
			logger.Error("job %s: workspace teardown failed: %v", jr.instance.Label, relErr)
			if result.Status == core.StatusSucceeded {
				result.Status = core.StatusFailed
				result.Error = relErr.Error()
				jr.jobWriter.End(report.StatusFailed, relErr.Error())
			}
		}
	}()

	status := core.StatusSucceeded
	var jobErr string

	for i, step := range steps {
		// Cancellation between steps: abort before dispatching the next one.
		if jr.ctx.Err() != nil {
			result.Steps[i].Status = core.StatusCancelled
			status = core.StatusCancelled
			jobErr = "execution cancelled"
			break
		}

		stepStart := time.Now()
		jr.jobWriter.StepStart(i)

		cmdResult := jr.runner.Execute(jr.ctx, step, ws)

		sr := &result.Steps[i]
		sr.StartTime = stepStart
		sr.Duration = cmdResult.Duration
		sr.ExitCode = cmdResult.ExitCode
		sr.Output = cmdResult.Output

		switch {
		case cmdResult.Success:
			sr.Status = core.StatusSucceeded
		case errors.Is(cmdResult.Error, core.ErrCancelled):
			sr.Status = core.StatusCancelled
		default:
			sr.Status = core.StatusFailed
		}
		if cmdResult.Error != nil {
			sr.Error = cmdResult.Error.Error()
		}

		jr.jobWriter.StepEnd(i, toReportStatus(sr.Status), sr.ExitCode, sr.Output, sr.Error)
		if jr.config.OnStepComplete != nil {
			jr.config.OnStepComplete(jr.instance.Label, i, step.Describe(),
				sr.Status == core.StatusSucceeded, sr.Duration.Milliseconds(), sr.Error)
		}

		if sr.Status == core.StatusCancelled {
			status = core.StatusCancelled
			jobErr = sr.Error
			break
		}

		if sr.Status == core.StatusFailed {
			if step.ContinueOnError {
				// Tolerated failure: recorded, does not fail the instance.
				logger.Warn("job %s: step %s failed (continue-on-error)", jr.instance.Label, step.Describe())
				continue
			}
			// Fail-fast: remaining steps never execute.
			status = core.StatusFailed
			jobErr = sr.Error
			break
		}
	}

	return finish(status, jobErr)
}
