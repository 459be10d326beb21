package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/types"
)

// SetupNodeStep provisions a pinned major Node.js version for the run.
// It looks in the local tool cache first, then falls back to whatever
// node the worker has on PATH, and fails when neither satisfies the
// requested major. The resolved bin directory is prepended to the
// run's PATH so later steps pick it up.
type SetupNodeStep struct {
	Major     int
	ToolCache string
}

func NewSetupNodeStep(with map[string]string) (Step, error) {
	version := with["node-version"]
	if version == "" {
		return nil, fmt.Errorf("setup-node requires a node-version parameter")
	}

	major, err := parseMajor(version)
	if err != nil {
		return nil, fmt.Errorf("invalid node-version %q: %w", version, err)
	}

	return &SetupNodeStep{
		Major:     major,
		ToolCache: filepath.Join(xdg.DataHome, "spoolci", "tools", "node"),
	}, nil
}

func (a *SetupNodeStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	// Tool cache wins over whatever the worker happens to have
	if binDir, ok := a.findCached(); ok {
		runtime.PrependPath(binDir)
		fmt.Fprintf(runtime.Stdout, "Using node %d from tool cache: %s\n", a.Major, binDir)
		return nil
	}

	nodePath, err := runtime.Shell.LookPath("node")
	if err != nil {
		return fmt.Errorf("node %d not found: no cached toolchain and no node on PATH", a.Major)
	}

	var stdout bytes.Buffer
	err = runtime.Shell.Run(ctx, fmt.Sprintf("%q --version", nodePath), shell.Options{
		Stdout: &stdout,
		Stderr: runtime.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to query node version: %w", err)
	}

	installed := strings.TrimSpace(stdout.String())
	major, err := parseMajor(installed)
	if err != nil {
		return fmt.Errorf("cannot parse node version %q: %w", installed, err)
	}
	if major != a.Major {
		return fmt.Errorf("node %d required but %s is installed", a.Major, installed)
	}

	runtime.PrependPath(filepath.Dir(nodePath))
	fmt.Fprintf(runtime.Stdout, "Using node %s from %s\n", installed, nodePath)
	return nil
}

// findCached looks for a tool cache entry whose version directory
// matches the requested major, e.g. tools/node/16.20.2/bin/node.
func (a *SetupNodeStep) findCached() (string, bool) {
	entries, err := os.ReadDir(a.ToolCache)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		major, err := parseMajor(entry.Name())
		if err != nil || major != a.Major {
			continue
		}

		binDir := filepath.Join(a.ToolCache, entry.Name(), "bin")
		if _, err := os.Stat(filepath.Join(binDir, "node")); err == nil {
			return binDir, true
		}
	}

	return "", false
}

// parseMajor extracts the major version from "16", "16.20.2" or "v16.20.2".
func parseMajor(version string) (int, error) {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	major, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("no major version in %q", version)
	}
	return major, nil
}

func (a *SetupNodeStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	return fmt.Sprintf("setup-node: major version %d", a.Major)
}
