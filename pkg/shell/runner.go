package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/conveyor-ci/conveyor/pkg/core"
	"github.com/conveyor-ci/conveyor/pkg/pipeline"
)

// maxOutputBytes caps the combined output kept per step.
const maxOutputBytes = 16 * 1024

// ActionFunc handles a built-in `uses:` action locally.
type ActionFunc func(ctx context.Context, step pipeline.Step, ws *core.Workspace) *core.CommandResult

// Runner executes steps as local shell commands. Run steps go through
// `sh -c`; uses steps are dispatched to registered built-in actions.
type Runner struct {
	actions map[string]ActionFunc
}

// NewRunner creates a Runner with the built-in actions registered.
func NewRunner() *Runner {
	r := &Runner{actions: make(map[string]ActionFunc)}

	// The workspace is already a clean directory, so checkout and cache
	// are satisfied trivially when running locally.
	r.Register("actions/checkout", noopAction("checked out workspace"))
	r.Register("actions/cache", noopAction("cache restored"))

	return r
}

// Register adds a built-in action handler. The ref is version-free
// ("actions/checkout", not "actions/checkout@v4").
func (r *Runner) Register(ref string, fn ActionFunc) {
	r.actions[ref] = fn
}

// ResolveAction reports whether a `uses:` reference is known. Called
// during validation so unknown actions fail before any job runs.
func (r *Runner) ResolveAction(ref string) error {
	if _, ok := r.actions[trimActionVersion(ref)]; !ok {
		return core.ErrUnknownAction.WithMessage(fmt.Sprintf("unknown action %q", ref))
	}
	return nil
}

// Execute runs a single step inside the workspace.
func (r *Runner) Execute(ctx context.Context, step pipeline.Step, ws *core.Workspace) *core.CommandResult {
	if step.Uses != "" {
		return r.executeAction(ctx, step, ws)
	}
	return r.executeRun(ctx, step, ws)
}

func (r *Runner) executeAction(ctx context.Context, step pipeline.Step, ws *core.Workspace) *core.CommandResult {
	fn, ok := r.actions[trimActionVersion(step.Uses)]
	if !ok {
		return &core.CommandResult{
			Success:  false,
			ExitCode: -1,
			Error:    core.ErrUnknownAction.WithMessage(fmt.Sprintf("unknown action %q", step.Uses)),
		}
	}
	start := time.Now()
	result := fn(ctx, step, ws)
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result
}

func (r *Runner) executeRun(ctx context.Context, step pipeline.Step, ws *core.Workspace) *core.CommandResult {
	runCtx := ctx
	if step.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutMinutes)*time.Minute)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", step.Run) //#nosec G204 -- command comes from the pipeline file
	cmd.Dir = ws.Dir
	cmd.Env = buildEnv(step, ws)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &core.CommandResult{
		Success:  err == nil,
		Duration: duration,
		Output:   truncate(out.String(), maxOutputBytes),
	}

	switch {
	case err == nil:
		result.ExitCode = 0
	case runCtx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		result.ExitCode = -1
		result.Error = core.ErrCancelled.WithCause(runCtx.Err())
	case runCtx.Err() != nil:
		result.ExitCode = -1
		result.Error = core.ErrStepTimeout.WithCause(runCtx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Error = core.ErrStepFailed.WithCause(err)
	}

	return result
}

// buildEnv assembles the step's process environment: the parent process
// environment, then workspace env, then step env with secret references
// expanded. Later entries win.
func buildEnv(step pipeline.Step, ws *core.Workspace) []string {
	env := os.Environ()
	for k, v := range ws.Env {
		env = append(env, k+"="+ExpandSecrets(v, ws.Secrets))
	}
	for k, v := range step.Env {
		env = append(env, k+"="+ExpandSecrets(v, ws.Secrets))
	}
	return env
}

// trimActionVersion strips the "@version" suffix from an action ref.
func trimActionVersion(ref string) string {
	if i := strings.IndexByte(ref, '@'); i >= 0 {
		return ref[:i]
	}
	return ref
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n... (output truncated)"
}

func noopAction(message string) ActionFunc {
	return func(ctx context.Context, step pipeline.Step, ws *core.Workspace) *core.CommandResult {
		return &core.CommandResult{Success: true, Message: message}
	}
}
