package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the isolated filesystem a single run owns for its
// duration. It is created empty and discarded at run end, success or
// failure; nothing carries over between runs.
type Workspace struct {
	Dir string
}

func New(runID string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "spoolci-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path resolves a path relative to the workspace root. Absolute paths
// pass through unchanged.
func (w *Workspace) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(w.Dir, rel)
}

func (w *Workspace) Destroy() error {
	return os.RemoveAll(w.Dir)
}
