package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wzshiming/ctc"
)

type Output struct {
	stdout io.Writer
	stderr io.Writer
}

func NewOutput(stdout, stderr io.Writer) *Output {
	return &Output{
		stdout: stdout,
		stderr: stderr,
	}
}

// Header prints a formatted section header
func (o *Output) Header(text string) {
	fmt.Fprintf(o.stdout, "\n%s\n", strings.Repeat("=", len(text)))
	fmt.Fprintf(o.stdout, "%s\n", text)
	fmt.Fprintf(o.stdout, "%s\n\n", strings.Repeat("=", len(text)))
}

// Info prints an informational message
func (o *Output) Info(format string, args ...any) {
	fmt.Fprintf(o.stdout, format+"\n", args...)
}

// Success prints a success message with checkmark
func (o *Output) Success(format string, args ...any) {
	fmt.Fprintf(o.stdout, "✓ "+format+"\n", args...)
}

// Error prints an error message
func (o *Output) Error(format string, args ...any) {
	fmt.Fprintf(o.stderr, o.DotRed()+" "+format+"\n", args...)
}

// Warning prints a warning message
func (o *Output) Warning(format string, args ...any) {
	fmt.Fprintf(o.stdout, "⚠ "+format+"\n", args...)
}

// StepProgress prints step progress
func (o *Output) StepProgress(current, total int, name string) {
	fmt.Fprintf(o.stdout, "\nStep %d/%d: %s\n", current, total, name)
}

// DryRunHeader prints dry-run mode header
func (o *Output) DryRunHeader(workflow, job string) {
	o.Header(fmt.Sprintf("DRY-RUN: %s / %s", workflow, job))
	o.Info("This would execute the following steps:")
}

// RunStarted prints run start information
func (o *Output) RunStarted(workflow, job, runID string) {
	o.Header(fmt.Sprintf("Workflow: %s / %s", workflow, job))
	o.Info("Run ID: %s", runID)
	o.Info("Started: %s", time.Now().Format(time.RFC3339))
}

// RunCompleted prints run completion summary
func (o *Output) RunCompleted(duration time.Duration) {
	o.Success("Run completed successfully")
	o.Info("Duration: %s", duration)
}

// RunFailed prints run failure information
func (o *Output) RunFailed(step string, err error) {
	o.Error("Run failed")
	if step != "" {
		o.Info("Failed step: %s", step)
	}
	o.Info("Error: %v", err)
}

// TriggerSkipped explains why nothing ran
func (o *Output) TriggerSkipped(workflow string, kind, ref string) {
	o.Info("%s skipped: %s %s does not match its triggers", workflow, kind, ref)
}

func (o *Output) DotRed() string {
	return fmt.Sprint(ctc.ForegroundRed, "•", ctc.Reset)
}
