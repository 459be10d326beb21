package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileHasValidExtension(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "yaml extension", path: "build-client.yaml", expected: true},
		{name: "yml extension", path: "build-client.yml", expected: true},
		{name: "json file", path: "build-client.json", expected: false},
		{name: "no extension", path: "Makefile", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileHasValidExtension(tt.path); got != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.path, got)
			}
		})
	}
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to get home directory: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde with path",
			input:    "~/.spoolci/build-client.yaml",
			expected: filepath.Join(home, ".spoolci/build-client.yaml"),
		},
		{
			name:     "tilde alone",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestExpandPath_AbsolutePath(t *testing.T) {
	input := "/absolute/path/to/file"
	result, err := ExpandPath(input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("Expected %q, got %q", input, result)
	}
}

func TestExpandPath_RelativePath(t *testing.T) {
	input := "relative/path/file.txt"
	result, err := ExpandPath(input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !filepath.IsAbs(result) {
		t.Errorf("Expected absolute path, got %q", result)
	}
	if !strings.HasSuffix(result, input) {
		t.Errorf("Expected result to end with %q, got %q", input, result)
	}
}
