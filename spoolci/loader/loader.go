package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vikavorkin/Spoolman/spoolci/schema"
	"github.com/vikavorkin/Spoolman/spoolci/utils"
	"gopkg.in/yaml.v3"
)

type Loader struct{}

func New() *Loader {
	return &Loader{}
}

// LoadFile parses a YAML workflow file
func (l *Loader) LoadFile(path string) (*schema.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var wf schema.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if wf.Name == "" {
		base := filepath.Base(path)
		wf.Name = base[:len(base)-len(filepath.Ext(base))]
	}

	return &wf, nil
}

// LoadDirectory loads all workflow files from a directory, sorted by
// filename so the result is stable across runs
func (l *Loader) LoadDirectory(dir string) ([]*schema.Workflow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !utils.FileHasValidExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no workflow files found in %s", dir)
	}

	var workflows []*schema.Workflow
	for _, path := range paths {
		wf, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}

	return workflows, nil
}

// LoadJob retrieves a job by name from the workflow
func (l *Loader) LoadJob(wf *schema.Workflow, name string) (*schema.Job, error) {
	job, ok := wf.Jobs[name]
	if !ok {
		return nil, fmt.Errorf("job %q not found", name)
	}
	return &job, nil
}

// Validate checks the workflow for structural correctness
func (l *Loader) Validate(wf *schema.Workflow) error {
	if len(wf.Jobs) == 0 {
		return fmt.Errorf("workflow %q defines no jobs", wf.Name)
	}

	for jobName, job := range wf.Jobs {
		if len(job.Steps) == 0 {
			return fmt.Errorf("job %q has no steps", jobName)
		}

		for key := range job.Env {
			if strings.HasPrefix(key, "SPOOLCI_") {
				return fmt.Errorf("job %q env overrides reserved variable %s", jobName, key)
			}
		}

		for i, step := range job.Steps {
			if step.Uses == "" && step.Run == "" {
				return fmt.Errorf("job %q step %d has neither uses nor run set", jobName, i)
			}
			if step.Uses != "" && step.Run != "" {
				return fmt.Errorf("job %q step %d has both uses and run set", jobName, i)
			}
			if step.Run != "" && len(step.With) > 0 {
				return fmt.Errorf("job %q step %d sets with parameters on a run step", jobName, i)
			}
			for key := range step.Env {
				if strings.HasPrefix(key, "SPOOLCI_") {
					return fmt.Errorf("job %q step %d env overrides reserved variable %s", jobName, i, key)
				}
			}
		}
	}

	return nil
}
