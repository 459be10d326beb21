package steps

import (
	"context"
	"fmt"

	"github.com/vikavorkin/Spoolman/spoolci/types"
)

// UploadArtifactStep publishes a produced file into the artifact store
// under a fixed name.
type UploadArtifactStep struct {
	Name string
	Path string
	Dir  string
}

func NewUploadArtifactStep(with map[string]string, workdir string) (Step, error) {
	if with["name"] == "" {
		return nil, fmt.Errorf("upload-artifact requires a name parameter")
	}
	if with["path"] == "" {
		return nil, fmt.Errorf("upload-artifact requires a path parameter")
	}

	return &UploadArtifactStep{
		Name: with["name"],
		Path: with["path"],
		Dir:  workdir,
	}, nil
}

func (a *UploadArtifactStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	name, err := expandEnv(a.Name, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand name: %w", err)
	}
	rel, err := expandEnv(a.Path, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	src := resolvePath(runtime, a.Dir, rel)
	entry, err := runtime.Store.Save(runtime.RunID, name, src)
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", name, err)
	}

	runtime.RecordArtifact(*entry)
	fmt.Fprintf(runtime.Stdout, "Uploaded artifact %s (%d bytes, sha256 %s)\n", entry.Name, entry.Size, entry.SHA256)
	return nil
}

func (a *UploadArtifactStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	return fmt.Sprintf("upload-artifact: %s from %s", a.Name, a.Path)
}
