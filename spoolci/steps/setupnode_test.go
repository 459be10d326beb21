package steps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeNode(t *testing.T, dir, version string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create bin dir: %v", err)
	}
	script := "#!/bin/sh\necho " + version + "\n"
	if err := os.WriteFile(filepath.Join(dir, "node"), []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake node: %v", err)
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "bare major", input: "16", expected: 16},
		{name: "full version", input: "16.20.2", expected: 16},
		{name: "v prefix", input: "v16.20.2", expected: 16},
		{name: "whitespace", input: " v18.0.0\n", expected: 18},
		{name: "garbage", input: "latest", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, err := parseMajor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if major != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, major)
			}
		})
	}
}

func TestSetupNode_FromToolCache(t *testing.T) {
	cache := t.TempDir()
	binDir := filepath.Join(cache, "16.20.2", "bin")
	fakeNode(t, binDir, "v16.20.2")

	runtime := testRuntime(t, pushEvent())
	step := &SetupNodeStep{Major: 16, ToolCache: cache}

	if err := step.Execute(context.Background(), runtime); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(runtime.Env["PATH"], binDir) {
		t.Errorf("Expected PATH to start with %q, got %q", binDir, runtime.Env["PATH"])
	}
}

func TestSetupNode_FromPath(t *testing.T) {
	binDir := filepath.Join(t.TempDir(), "bin")
	fakeNode(t, binDir, "v16.20.2")
	t.Setenv("PATH", binDir+string(filepath.ListSeparator)+os.Getenv("PATH"))

	runtime := testRuntime(t, pushEvent())
	// Tool cache that has nothing for this major
	step := &SetupNodeStep{Major: 16, ToolCache: t.TempDir()}

	if err := step.Execute(context.Background(), runtime); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(runtime.Env["PATH"], binDir) {
		t.Errorf("Expected PATH to start with %q, got %q", binDir, runtime.Env["PATH"])
	}
}

func TestSetupNode_MajorMismatch(t *testing.T) {
	binDir := filepath.Join(t.TempDir(), "bin")
	fakeNode(t, binDir, "v18.19.0")
	t.Setenv("PATH", binDir)

	runtime := testRuntime(t, pushEvent())
	step := &SetupNodeStep{Major: 16, ToolCache: t.TempDir()}

	err := step.Execute(context.Background(), runtime)
	if err == nil {
		t.Fatal("Expected error for major version mismatch")
	}
	if !strings.Contains(err.Error(), "v18.19.0") {
		t.Errorf("Expected installed version in error, got %v", err)
	}
}

func TestSetupNode_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	runtime := testRuntime(t, pushEvent())
	step := &SetupNodeStep{Major: 16, ToolCache: t.TempDir()}

	if err := step.Execute(context.Background(), runtime); err == nil {
		t.Error("Expected error when node cannot be resolved")
	}
}

func TestNewSetupNodeStep(t *testing.T) {
	step, err := NewSetupNodeStep(map[string]string{"node-version": "16"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if step.(*SetupNodeStep).Major != 16 {
		t.Errorf("Expected major 16, got %d", step.(*SetupNodeStep).Major)
	}

	if _, err := NewSetupNodeStep(map[string]string{}); err == nil {
		t.Error("Expected error for missing node-version")
	}
	if _, err := NewSetupNodeStep(map[string]string{"node-version": "latest"}); err == nil {
		t.Error("Expected error for unparseable node-version")
	}
}
