package spoolci

import (
	"os"
	"path/filepath"
	"testing"
)

const validWorkflow = `name: build-client
on:
  push:
    branches: [master]
jobs:
  build:
    steps:
      - run: npm ci
`

func writeWorkflowFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write workflow file: %v", err)
	}
	return path
}

func TestLoadWorkflows_File(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflowFile(t, dir, "build-client.yaml", validWorkflow)

	s := New(os.Stdout, os.Stderr)
	workflows, err := s.loadWorkflows(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(workflows) != 1 {
		t.Fatalf("Expected 1 workflow, got %d", len(workflows))
	}
	if workflows[0].Name != "build-client" {
		t.Errorf("Expected workflow %q, got %q", "build-client", workflows[0].Name)
	}
}

func TestLoadWorkflows_Directory(t *testing.T) {
	dir := t.TempDir()
	writeWorkflowFile(t, dir, "build-client.yaml", validWorkflow)
	writeWorkflowFile(t, dir, "notes.txt", "not a workflow")

	s := New(os.Stdout, os.Stderr)
	workflows, err := s.loadWorkflows(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(workflows) != 1 {
		t.Fatalf("Expected 1 workflow, got %d", len(workflows))
	}
}

func TestLoadWorkflows_TildePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".spoolci"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	writeWorkflowFile(t, filepath.Join(home, ".spoolci"), "build-client.yaml", validWorkflow)

	s := New(os.Stdout, os.Stderr)
	workflows, err := s.loadWorkflows("~/.spoolci")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(workflows) != 1 {
		t.Fatalf("Expected 1 workflow, got %d", len(workflows))
	}
}

func TestLoadWorkflows_MissingPath(t *testing.T) {
	s := New(os.Stdout, os.Stderr)
	if _, err := s.loadWorkflows(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing workflow path")
	}
}

func TestLoadWorkflows_InvalidWorkflow(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflowFile(t, dir, "empty.yaml", "name: empty\njobs: {}\n")

	s := New(os.Stdout, os.Stderr)
	if _, err := s.loadWorkflows(path); err == nil {
		t.Error("Expected validation error for workflow without jobs")
	}
}

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"master", "refs/heads/master"},
		{"refs/heads/master", "refs/heads/master"},
		{"refs/tags/v1.2.0", "refs/tags/v1.2.0"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeRef(tt.in); got != tt.want {
			t.Errorf("normalizeRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
