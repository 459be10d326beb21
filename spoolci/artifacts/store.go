package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const manifestFile = "manifest.yaml"

// Entry describes one stored artifact.
type Entry struct {
	Name      string    `yaml:"name"`
	Size      int64     `yaml:"size"`
	SHA256    string    `yaml:"sha256"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Manifest is the record a run leaves behind next to its artifacts.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	Workflow   string    `yaml:"workflow"`
	Job        string    `yaml:"job"`
	Event      string    `yaml:"event"`
	Ref        string    `yaml:"ref"`
	Status     string    `yaml:"status"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Artifacts  []Entry   `yaml:"artifacts,omitempty"`
}

// Store keeps run artifacts on the local filesystem, one directory
// per run under the user's data directory.
type Store struct {
	root string
}

func NewStore() *Store {
	return NewStoreAt(filepath.Join(xdg.DataHome, "spoolci", "runs"))
}

func NewStoreAt(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.root, runID)
}

// Save copies a produced file into the store under the given artifact
// name. The copy is byte-identical to the source; the checksum is
// computed while copying.
func (s *Store) Save(runID, name, srcPath string) (*Entry, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("artifact source %s not found: %w", srcPath, err)
	}
	defer src.Close()

	dir := filepath.Join(s.runDir(runID), "artifacts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact %s: %w", name, err)
	}
	defer dst.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hash), src)
	if err != nil {
		return nil, fmt.Errorf("failed to copy artifact %s: %w", name, err)
	}

	return &Entry{
		Name:      name,
		Size:      size,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		CreatedAt: time.Now(),
	}, nil
}

// ArtifactPath returns where a named artifact of a run is stored.
func (s *Store) ArtifactPath(runID, name string) string {
	return filepath.Join(s.runDir(runID), "artifacts", name)
}

// WriteManifest persists the run record.
func (s *Store) WriteManifest(m *Manifest) error {
	if err := os.MkdirAll(s.runDir(m.RunID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	path := filepath.Join(s.runDir(m.RunID), manifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}

	return nil
}

// List returns all run manifests, newest first.
func (s *Store) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.root, entry.Name(), manifestFile))
		if err != nil {
			// Run directory without a manifest: run still in flight
			// or interrupted before the record was written
			continue
		}

		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest for run %s: %w", entry.Name(), err)
		}
		manifests = append(manifests, &m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].StartedAt.After(manifests[j].StartedAt)
	})

	return manifests, nil
}
