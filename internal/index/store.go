package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/EpicWink/pypub/internal/api"
	"github.com/EpicWink/pypub/internal/dist"
)

// Store keeps accepted artifacts on disk under <dir>/<name>/<version>/<filename>.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name, version, filename string) string {
	return filepath.Join(s.dir, name, version, filename)
}

// Exists reports whether an artifact with this filename was already accepted.
func (s *Store) Exists(name, version, filename string) bool {
	_, err := os.Stat(s.path(name, version, filename))
	return err == nil
}

// Put writes an artifact to the store. Creates parent directories as needed;
// refuses to overwrite an existing file.
func (s *Store) Put(name, version, filename string, r io.Reader) error {
	dest := s.path(name, version, filename)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("open dest %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// List enumerates all stored artifacts with their digests.
func (s *Store) List() ([]api.PackageEntry, error) {
	var entries []api.PackageEntry
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if os.IsNotExist(err) && path == s.dir {
			return filepath.SkipAll // empty store
		}
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		name, rest := splitFirst(rel)
		version, filename := splitFirst(rest)
		if filename == "" {
			return nil // stray file outside <name>/<version>/
		}

		digests, err := dist.HashFile(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
		entries = append(entries, api.PackageEntry{
			Name:       name,
			Version:    version,
			Filename:   filename,
			SHA256:     digests.SHA256,
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
		return nil
	})
	return entries, err
}

func splitFirst(path string) (first, rest string) {
	for i := 0; i < len(path); i++ {
		if os.IsPathSeparator(path[i]) {
			return path[:i], path[i+1:]
		}
	}
	return path, ""
}
