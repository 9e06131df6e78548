package dist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filetype values the index recognises.
const (
	Sdist = "sdist"
	Wheel = "bdist_wheel"
)

// Artifact is a single distributable file found in the build output directory.
type Artifact struct {
	Path      string
	Filename  string
	Name      string
	Version   string
	Filetype  string
	Pyversion string // "source" for sdists, the python tag for wheels
	Digests   Digests
	Metadata  Metadata
}

// Collect scans outdir for distributable artifacts (*.whl, *.tar.gz), parses
// their filenames and computes digests. Files with other extensions are
// ignored. An empty output directory is an error: a publish with nothing to
// upload is a failed build, not a success.
func Collect(outdir string) ([]Artifact, error) {
	entries, err := os.ReadDir(outdir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", outdir, err)
	}

	var artifacts []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		a, ok, err := parseFilename(e.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if !ok {
			continue
		}

		a.Path = filepath.Join(outdir, e.Name())
		a.Digests, err = HashFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", a.Path, err)
		}
		artifacts = append(artifacts, a)
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no distributable artifacts in %s", outdir)
	}
	return artifacts, nil
}

// parseFilename recognises wheel and sdist filenames. ok is false for files
// that are not artifacts at all; err is set for files that look like artifacts
// but have a malformed name.
func parseFilename(base string) (Artifact, bool, error) {
	switch {
	case strings.HasSuffix(base, ".whl"):
		// {name}-{version}(-{build})?-{python tag}-{abi tag}-{platform tag}.whl
		parts := strings.Split(strings.TrimSuffix(base, ".whl"), "-")
		if len(parts) != 5 && len(parts) != 6 {
			return Artifact{}, false, fmt.Errorf("malformed wheel filename")
		}
		return Artifact{
			Filename:  base,
			Name:      parts[0],
			Version:   parts[1],
			Filetype:  Wheel,
			Pyversion: parts[len(parts)-3],
		}, true, nil

	case strings.HasSuffix(base, ".tar.gz"):
		// {name}-{version}.tar.gz; the version holds no dash
		stem := strings.TrimSuffix(base, ".tar.gz")
		i := strings.LastIndex(stem, "-")
		if i <= 0 || i == len(stem)-1 {
			return Artifact{}, false, fmt.Errorf("malformed sdist filename")
		}
		return Artifact{
			Filename:  base,
			Name:      stem[:i],
			Version:   stem[i+1:],
			Filetype:  Sdist,
			Pyversion: "source",
		}, true, nil
	}
	return Artifact{}, false, nil
}
