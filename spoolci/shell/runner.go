package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner executes commands on the local worker.
type Runner interface {
	Run(ctx context.Context, command string, opts Options) error
	LookPath(name string) (string, error)
}

// Options configures a single command invocation.
type Options struct {
	Dir    string
	Env    map[string]string
	Stdout io.Writer
	Stderr io.Writer
}

type runner struct{}

func NewRunner() Runner {
	return &runner{}
}

func (r *runner) Run(ctx context.Context, command string, opts Options) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = opts.Dir

	// Start from the worker's environment so PATH and friends survive,
	// then layer the run's variables on top
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("command exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func (r *runner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
