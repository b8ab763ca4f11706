// Package shell executes pipeline steps as local shell commands. It is
// the default pair of external collaborators: a Provisioner that hands
// each job instance a clean working directory, and a StepRunner that
// invokes step commands and observes their exit status.
package shell

import (
	"context"
	"os"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// LocalProvisioner acquires a throwaway working directory for each job
// instance and merges the environment the instance will see. Secrets are
// injected here and nowhere else.
type LocalProvisioner struct {
	BaseDir string            // Parent for workspace dirs; "" uses the system temp dir
	Env     map[string]string // Environment shared by all instances
	Secrets map[string]string // Secret values resolved at acquisition time
}

// Acquire creates a clean workspace for one instance of the job.
func (p *LocalProvisioner) Acquire(ctx context.Context, job pipeline.Job, label string) (*core.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.ErrCancelled.WithCause(err)
	}

	dir, err := os.MkdirTemp(p.BaseDir, "conveyor-job-")
	if err != nil {
		return nil, core.ErrWorkspaceSetup.WithCause(err)
	}

	env := make(map[string]string, len(p.Env)+len(job.Env))
	for k, v := range p.Env {
		env[k] = v
	}
	for k, v := range job.Env {
		env[k] = v
	}

	return &core.Workspace{
		Dir:     dir,
		RunsOn:  job.RunsOn,
		Env:     env,
		Secrets: p.Secrets,
	}, nil
}

// Release tears down the workspace. Safe to call with a nil workspace.
func (p *LocalProvisioner) Release(ws *core.Workspace) error {
	if ws == nil || ws.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		return core.ErrWorkspaceTeardown.WithCause(err)
	}
	return nil
}
