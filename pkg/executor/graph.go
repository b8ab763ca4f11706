package executor

import (
	"fmt"
	"regexp"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// Instance is one concrete, runnable unit: a job definition bound to a
// single matrix point, or the definition itself when unparameterized.
// Instances never share mutable state; each carries its own copy of the
// step sequence.
type Instance struct {
	Job   pipeline.Job      // Definition with matrix references expanded
	Point map[string]string // Matrix-point bindings, nil when unparameterized
	Label string            // "test (ubuntu-latest)" or just the job name
}

// matrixRef matches ${{ matrix.NAME }} references in job fields.
var matrixRef = regexp.MustCompile(`\$\{\{\s*matrix\.([A-Za-z_][A-Za-z0-9_-]*)\s*\}\}`)

// BuildInstances expands the pipeline's job definitions into concrete
// instances. Matrixed jobs produce one instance per cross-product point
// (first axis varies slowest); other jobs produce exactly one.
//
// Configuration errors: an axis with zero values, or two instances
// sharing an identical label (ambiguous identity).
func BuildInstances(p *pipeline.Pipeline) ([]Instance, error) {
	var instances []Instance
	seen := make(map[string]bool)

	add := func(inst Instance) error {
		if seen[inst.Label] {
			return core.ErrDuplicateJob.WithMessage(fmt.Sprintf("job %q declared twice", inst.Label))
		}
		seen[inst.Label] = true
		instances = append(instances, inst)
		return nil
	}

	for _, job := range p.Jobs {
		if !job.Matrixed() {
			if err := add(Instance{Job: copyJob(job, nil), Label: job.Name}); err != nil {
				return nil, err
			}
			continue
		}

		for _, axis := range job.Matrix.Axes {
			if len(axis.Values) == 0 {
				return nil, core.ErrEmptyAxis.WithMessage(
					fmt.Sprintf("matrix axis %q of job %q has no values", axis.Name, job.Name))
			}
		}

		for _, point := range job.Matrix.Points() {
			inst := Instance{
				Job:   copyJob(job, point.Values),
				Point: point.Values,
				Label: fmt.Sprintf("%s (%s)", job.Name, point.Label),
			}
			if err := add(inst); err != nil {
				return nil, err
			}
		}
	}

	return instances, nil
}

// ValidateActions resolves every `uses:` reference against the step
// runner. An unknown action is a configuration error reported before any
// job runs.
func ValidateActions(instances []Instance, runner core.StepRunner) error {
	for _, inst := range instances {
		for _, step := range inst.Job.Steps {
			if step.Uses == "" {
				continue
			}
			if err := runner.ResolveAction(step.Uses); err != nil {
				return fmt.Errorf("job %q: %w", inst.Label, err)
			}
		}
	}
	return nil
}

// copyJob deep-copies the job with matrix references expanded against
// the point bindings. The matrix is dropped from the copy; instances are
// already bound.
func copyJob(job pipeline.Job, point map[string]string) pipeline.Job {
	expanded := pipeline.Job{
		Name:   job.Name,
		RunsOn: expandMatrix(job.RunsOn, point),
		Env:    expandMatrixMap(job.Env, point),
		Steps:  make([]pipeline.Step, len(job.Steps)),
	}
	for i, step := range job.Steps {
		expanded.Steps[i] = pipeline.Step{
			Name:            step.Name,
			Run:             expandMatrix(step.Run, point),
			Uses:            step.Uses,
			With:            expandMatrixMap(step.With, point),
			Env:             expandMatrixMap(step.Env, point),
			ContinueOnError: step.ContinueOnError,
			TimeoutMinutes:  step.TimeoutMinutes,
		}
	}
	return expanded
}

func expandMatrix(s string, point map[string]string) string {
	if point == nil || s == "" {
		return s
	}
	return matrixRef.ReplaceAllStringFunc(s, func(m string) string {
		name := matrixRef.FindStringSubmatch(m)[1]
		if v, ok := point[name]; ok {
			return v
		}
		return m
	})
}

func expandMatrixMap(m map[string]string, point map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = expandMatrix(v, point)
	}
	return out
}
