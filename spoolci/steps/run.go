package steps

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/types"
)

type RunStep struct {
	Command string
	Dir     string
	Output  io.Writer
	ErrOut  io.Writer
}

func NewRunStep(command, workdir string, stdout, stderr io.Writer) Step {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &RunStep{
		Command: command,
		Dir:     workdir,
		Output:  stdout,
		ErrOut:  stderr,
	}
}

func (a *RunStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	cmd, err := expandEnv(a.Command, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand command: %w", err)
	}

	err = runtime.Shell.Run(ctx, cmd, shell.Options{
		Dir:    resolvePath(runtime, a.Dir, "."),
		Env:    runtime.Env,
		Stdout: a.Output,
		Stderr: a.ErrOut,
	})
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func (a *RunStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	return fmt.Sprintf("run: %s", a.Command)
}
