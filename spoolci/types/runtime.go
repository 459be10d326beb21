package types

import (
	"io"
	"os"
	"path/filepath"

	"github.com/vikavorkin/Spoolman/spoolci/artifacts"
	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/trigger"
	"github.com/vikavorkin/Spoolman/spoolci/workspace"
)

type Runtime struct {
	Shell     shell.Runner
	Store     *artifacts.Store
	Workspace *workspace.Workspace
	Env       map[string]string
	RunID     string
	Workflow  string
	Job       string
	Event     trigger.Event
	Stdout    io.Writer
	Stderr    io.Writer

	saved []artifacts.Entry
}

func NewRuntime(runID string, sh shell.Runner, store *artifacts.Store, ws *workspace.Workspace, workflow, job string, event trigger.Event, userEnv map[string]string, stdout, stderr io.Writer) *Runtime {
	// Build environment with SPOOLCI_* built-ins
	env := make(map[string]string)

	// Copy user-provided env
	for k, v := range userEnv {
		env[k] = v
	}

	// Add SPOOLCI_* built-ins (these cannot be overridden by users)
	env["SPOOLCI_RUN_ID"] = runID
	env["SPOOLCI_WORKFLOW"] = workflow
	env["SPOOLCI_JOB"] = job
	env["SPOOLCI_EVENT"] = string(event.Kind)
	env["SPOOLCI_REF"] = event.Ref
	env["SPOOLCI_WORKSPACE"] = ws.Dir

	return &Runtime{
		Shell:     sh,
		Store:     store,
		Workspace: ws,
		Env:       env,
		RunID:     runID,
		Workflow:  workflow,
		Job:       job,
		Event:     event,
		Stdout:    stdout,
		Stderr:    stderr,
	}
}

// PrependPath puts a directory in front of the run's PATH so commands
// in later steps resolve tools provisioned by earlier ones.
func (r *Runtime) PrependPath(dir string) {
	base, ok := r.Env["PATH"]
	if !ok {
		base = os.Getenv("PATH")
	}
	r.Env["PATH"] = dir + string(filepath.ListSeparator) + base
}

// RecordArtifact notes an artifact published during this run.
func (r *Runtime) RecordArtifact(entry artifacts.Entry) {
	r.saved = append(r.saved, entry)
}

func (r *Runtime) Artifacts() []artifacts.Entry {
	return r.saved
}
