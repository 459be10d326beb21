package ui

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/vikavorkin/Spoolman/spoolci/artifacts"
)

// StepRow is one line of the per-run step summary.
type StepRow struct {
	Name     string
	Status   string
	Duration time.Duration
}

// StepSummary renders the step outcomes of a run.
func (o *Output) StepSummary(rows []StepRow) {
	t := table.NewWriter()
	t.SetOutputMirror(o.stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Step", "Status", "Duration"})
	for i, row := range rows {
		t.AppendRow(table.Row{i + 1, row.Name, row.Status, row.Duration.Round(time.Millisecond)})
	}
	t.Render()
}

// ArtifactTable renders stored artifacts across runs.
func (o *Output) ArtifactTable(manifests []*artifacts.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(o.stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Workflow", "Status", "Artifact", "Size", "SHA-256", "Created"})
	for _, m := range manifests {
		if len(m.Artifacts) == 0 {
			t.AppendRow(table.Row{m.RunID, m.Workflow, m.Status, "-", "-", "-", m.StartedAt.Format(time.RFC3339)})
			continue
		}
		for _, a := range m.Artifacts {
			t.AppendRow(table.Row{m.RunID, m.Workflow, m.Status, a.Name, a.Size, shortSum(a.SHA256), a.CreatedAt.Format(time.RFC3339)})
		}
	}
	t.Render()
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
