package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vikavorkin/Spoolman/spoolci/types"
)

// WriteFileStep overwrites a file with fixed content. The write is a
// full replacement, never an append, so the build can't pick up stale
// or developer-local values from a previous state of the tree.
type WriteFileStep struct {
	Path    string
	Content string
	Dir     string
}

func NewWriteFileStep(with map[string]string, workdir string) (Step, error) {
	path := with["path"]
	if path == "" {
		return nil, fmt.Errorf("write-file requires a path parameter")
	}

	return &WriteFileStep{
		Path:    path,
		Content: with["content"],
		Dir:     workdir,
	}, nil
}

func (a *WriteFileStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	path, err := expandEnv(a.Path, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	content, err := expandEnv(a.Content, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand content: %w", err)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	dst := resolvePath(runtime, a.Dir, path)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (a *WriteFileStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	return fmt.Sprintf("write-file: %s", a.Path)
}
