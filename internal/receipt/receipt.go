package receipt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/EpicWink/pypub/internal/dist"
)

// Receipt records one successful publish run. The index owns the release
// record; receipts only exist so an operator can see what a run uploaded and
// with which digests.
type Receipt struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Repository  string     `json:"repository"`
	PublishedAt time.Time  `json:"published_at"`
	Artifacts   []Artifact `json:"artifacts"`
}

// Artifact is one file of a publish run.
type Artifact struct {
	Filename string `json:"filename"`
	Version  string `json:"version"`
	Filetype string `json:"filetype"`
	SHA256   string `json:"sha256"`
	Skipped  bool   `json:"skipped,omitempty"` // already on the index, run had skip_existing
}

// New builds a receipt for a completed run. skipped holds the filenames that
// were already present on the index.
func New(name, repository string, artifacts []dist.Artifact, skipped map[string]bool) Receipt {
	r := Receipt{
		ID:          uuid.NewString(),
		Name:        name,
		Repository:  repository,
		PublishedAt: time.Now().UTC(),
	}
	for _, a := range artifacts {
		r.Artifacts = append(r.Artifacts, Artifact{
			Filename: a.Filename,
			Version:  a.Version,
			Filetype: a.Filetype,
			SHA256:   a.Digests.SHA256,
			Skipped:  skipped[a.Filename],
		})
	}
	return r
}

// DefaultDir returns the per-user receipt directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "pypub"), nil
}

// Save writes the receipt to <base>/<project>/receipts/<id>.json and updates
// <base>/<project>/last.json.
func Save(base string, r Receipt) error {
	dir := filepath.Join(base, r.Name, "receipts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, r.ID+".json"), data, 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(base, r.Name, "last.json"), data, 0644)
}

// LoadLast reads the most recent receipt for a project.
// Returns nil, nil if the project has never published.
func LoadLast(base, project string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(base, project, "last.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
