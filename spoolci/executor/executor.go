package executor

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vikavorkin/Spoolman/spoolci/artifacts"
	"github.com/vikavorkin/Spoolman/spoolci/loader"
	"github.com/vikavorkin/Spoolman/spoolci/schema"
	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/steps"
	"github.com/vikavorkin/Spoolman/spoolci/trigger"
	"github.com/vikavorkin/Spoolman/spoolci/types"
	"github.com/vikavorkin/Spoolman/spoolci/ui"
	"github.com/vikavorkin/Spoolman/spoolci/workspace"
)

type Executor interface {
	ExecuteWorkflow(ctx context.Context, wf *schema.Workflow, event trigger.Event, env map[string]string) ([]*Result, error)
	DryRun(ctx context.Context, wf *schema.Workflow, event trigger.Event, env map[string]string) error
}

type Result struct {
	RunID      string
	Workflow   string
	Job        string
	StartTime  time.Time
	EndTime    time.Time
	Failed     bool
	FailedStep string
	Error      error
	Artifacts  []artifacts.Entry
}

type executor struct {
	shell  shell.Runner
	store  *artifacts.Store
	stdout io.Writer
	stderr io.Writer
	ui     *ui.Output
}

func New(sh shell.Runner, store *artifacts.Store, stdout, stderr io.Writer) Executor {
	return &executor{
		shell:  sh,
		store:  store,
		stdout: stdout,
		stderr: stderr,
		ui:     ui.NewOutput(stdout, stderr),
	}
}

// ExecuteWorkflow runs every job of the workflow sequentially, each on
// its own ephemeral workspace. The first failed job aborts the rest.
func (e *executor) ExecuteWorkflow(ctx context.Context, wf *schema.Workflow, event trigger.Event, env map[string]string) ([]*Result, error) {
	var results []*Result

	for _, jobName := range sortedJobNames(wf) {
		job := wf.Jobs[jobName]

		result, err := e.executeJob(ctx, wf, jobName, &job, event, env)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

func (e *executor) executeJob(ctx context.Context, wf *schema.Workflow, jobName string, job *schema.Job, event trigger.Event, env map[string]string) (*Result, error) {
	result := &Result{
		Workflow:  wf.Name,
		Job:       jobName,
		StartTime: time.Now(),
	}

	runID := uuid.New().String()
	ws, err := workspace.New(runID)
	if err != nil {
		result.Failed = true
		result.Error = err
		return result, err
	}
	defer ws.Destroy()

	jobEnv := loader.MergeEnv(job, nil, env)
	runtime := types.NewRuntime(runID, e.shell, e.store, ws, wf.Name, jobName, event, jobEnv, e.stdout, e.stderr)
	result.RunID = runtime.RunID

	e.ui.RunStarted(wf.Name, jobName, runtime.RunID)
	e.ui.Info("Event: %s %s", event.Kind, event.ShortRef())

	var rows []ui.StepRow
	fail := func(step string, err error) (*Result, error) {
		result.Failed = true
		result.FailedStep = step
		result.Error = err
		result.EndTime = time.Now()
		result.Artifacts = runtime.Artifacts()
		e.writeManifest(result, event)
		e.ui.StepSummary(rows)
		e.ui.RunFailed(step, err)
		return result, err
	}

	for i := range job.Steps {
		step := &job.Steps[i]
		name := stepName(step)
		e.ui.StepProgress(i+1, len(job.Steps), name)

		impl, err := steps.New(step, effectiveWorkdir(job, step), e.stdout, e.stderr)
		if err != nil {
			rows = append(rows, ui.StepRow{Name: name, Status: "invalid"})
			return fail(name, fmt.Errorf("step %q: %w", name, err))
		}

		restore := overlayEnv(runtime, step.Env)
		stepStart := time.Now()
		err = impl.Execute(ctx, runtime)
		restore()

		if err != nil {
			rows = append(rows, ui.StepRow{Name: name, Status: "failed", Duration: time.Since(stepStart)})
			return fail(name, fmt.Errorf("step %q failed: %w", name, err))
		}

		rows = append(rows, ui.StepRow{Name: name, Status: "success", Duration: time.Since(stepStart)})
		e.ui.Success("Step completed: %s", name)
	}

	result.EndTime = time.Now()
	result.Artifacts = runtime.Artifacts()
	e.writeManifest(result, event)
	e.ui.StepSummary(rows)
	e.ui.RunCompleted(result.EndTime.Sub(result.StartTime))

	return result, nil
}

// DryRun prints what each job would execute without touching the
// worker beyond an empty scratch workspace.
func (e *executor) DryRun(ctx context.Context, wf *schema.Workflow, event trigger.Event, env map[string]string) error {
	for _, jobName := range sortedJobNames(wf) {
		job := wf.Jobs[jobName]

		runID := uuid.New().String()
		ws, err := workspace.New(runID)
		if err != nil {
			return err
		}

		jobEnv := loader.MergeEnv(&job, nil, env)
		runtime := types.NewRuntime(runID, e.shell, e.store, ws, wf.Name, jobName, event, jobEnv, e.stdout, e.stderr)

		e.ui.DryRunHeader(wf.Name, jobName)
		for i := range job.Steps {
			step := &job.Steps[i]
			impl, err := steps.New(step, effectiveWorkdir(&job, step), e.stdout, e.stderr)
			if err != nil {
				ws.Destroy()
				return fmt.Errorf("step %q: %w", stepName(step), err)
			}
			e.ui.Info("  - %s", impl.DryRun(ctx, runtime))
		}

		ws.Destroy()
	}

	return nil
}

func (e *executor) writeManifest(result *Result, event trigger.Event) {
	manifest := &artifacts.Manifest{
		RunID:      result.RunID,
		Workflow:   result.Workflow,
		Job:        result.Job,
		Event:      string(event.Kind),
		Ref:        event.Ref,
		Status:     "success",
		StartedAt:  result.StartTime,
		FinishedAt: result.EndTime,
		Artifacts:  result.Artifacts,
	}
	if result.Failed {
		manifest.Status = "failed"
	}

	if err := e.store.WriteManifest(manifest); err != nil {
		e.ui.Warning("Failed to write run manifest: %v", err)
	}
}

// overlayEnv applies step-level env for the duration of one step and
// returns a function that undoes exactly those keys, leaving changes
// the step itself made (like PATH from setup-node) in place. Reserved
// SPOOLCI_ variables are never overlaid.
func overlayEnv(runtime *types.Runtime, env map[string]string) func() {
	if len(env) == 0 {
		return func() {}
	}

	saved := make(map[string]*string, len(env))
	for k, v := range env {
		if strings.HasPrefix(k, "SPOOLCI_") {
			continue
		}
		if old, ok := runtime.Env[k]; ok {
			oldCopy := old
			saved[k] = &oldCopy
		} else {
			saved[k] = nil
		}
		runtime.Env[k] = v
	}

	return func() {
		for k, old := range saved {
			if old == nil {
				delete(runtime.Env, k)
			} else {
				runtime.Env[k] = *old
			}
		}
	}
}

func effectiveWorkdir(job *schema.Job, step *schema.Step) string {
	if step.WorkingDirectory != "" {
		return step.WorkingDirectory
	}
	return job.Defaults.WorkingDirectory
}

func stepName(step *schema.Step) string {
	if step.Name != "" {
		return step.Name
	}
	if step.Uses != "" {
		return step.Uses
	}
	return "run"
}

func sortedJobNames(wf *schema.Workflow) []string {
	names := make([]string, 0, len(wf.Jobs))
	for name := range wf.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
