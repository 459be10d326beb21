package steps

import (
	"context"
	"os"
	"testing"
)

func TestUploadArtifact(t *testing.T) {
	runtime := testRuntime(t, pushEvent())
	writeTree(t, runtime.Workspace.Path("client/dist"), map[string]string{
		"spoolman-client.zip": "archive bytes",
	})

	step, err := NewUploadArtifactStep(map[string]string{
		"name": "spoolman-client.zip",
		"path": "client/dist/spoolman-client.zip",
	}, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := step.Execute(context.Background(), runtime); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stored, err := os.ReadFile(runtime.Store.ArtifactPath(runtime.RunID, "spoolman-client.zip"))
	if err != nil {
		t.Fatalf("Failed to read stored artifact: %v", err)
	}
	if string(stored) != "archive bytes" {
		t.Error("Stored artifact differs from produced file")
	}

	recorded := runtime.Artifacts()
	if len(recorded) != 1 || recorded[0].Name != "spoolman-client.zip" {
		t.Errorf("Expected one recorded artifact, got %v", recorded)
	}
}

func TestUploadArtifact_MissingPath(t *testing.T) {
	runtime := testRuntime(t, pushEvent())

	step, err := NewUploadArtifactStep(map[string]string{
		"name": "spoolman-client.zip",
		"path": "client/dist/spoolman-client.zip",
	}, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := step.Execute(context.Background(), runtime); err == nil {
		t.Error("Expected error when the artifact path does not exist")
	}
}

func TestUploadArtifact_RequiresParameters(t *testing.T) {
	if _, err := NewUploadArtifactStep(map[string]string{"path": "x"}, ""); err == nil {
		t.Error("Expected error for missing name")
	}
	if _, err := NewUploadArtifactStep(map[string]string{"name": "x"}, ""); err == nil {
		t.Error("Expected error for missing path")
	}
}
