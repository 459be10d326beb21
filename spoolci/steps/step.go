package steps

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/vikavorkin/Spoolman/spoolci/schema"
	"github.com/vikavorkin/Spoolman/spoolci/types"
)

type Step interface {
	Execute(ctx context.Context, runtime *types.Runtime) error
	DryRun(ctx context.Context, runtime *types.Runtime) string
}

// New builds the step implementation for a schema step. workdir is the
// effective working directory, relative to the workspace root.
func New(step *schema.Step, workdir string, stdout, stderr io.Writer) (Step, error) {
	if step.Run != "" {
		return NewRunStep(step.Run, workdir, stdout, stderr), nil
	}

	switch step.Uses {
	case "checkout":
		return NewCheckoutStep(step.With), nil
	case "setup-node":
		return NewSetupNodeStep(step.With)
	case "write-file":
		return NewWriteFileStep(step.With, workdir)
	case "archive":
		return NewArchiveStep(step.With, workdir)
	case "upload-artifact":
		return NewUploadArtifactStep(step.With, workdir)
	case "":
		return nil, fmt.Errorf("no step type specified")
	default:
		return nil, fmt.Errorf("unknown built-in step %q", step.Uses)
	}
}

// resolvePath turns a step-relative path into an absolute one inside
// the run workspace.
func resolvePath(runtime *types.Runtime, workdir, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return runtime.Workspace.Path(filepath.Join(workdir, rel))
}
