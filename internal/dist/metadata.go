package dist

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Metadata is the subset of core package metadata the upload API carries.
type Metadata struct {
	MetadataVersion string
	Name            string
	Version         string
	Summary         string
}

// ReadMetadata extracts package metadata from an artifact: PKG-INFO for
// sdists, the .dist-info/METADATA member for wheels.
func ReadMetadata(a Artifact) (Metadata, error) {
	switch a.Filetype {
	case Sdist:
		return readSdistMetadata(a.Path)
	case Wheel:
		return readWheelMetadata(a.Path)
	}
	return Metadata{}, fmt.Errorf("unknown filetype %q", a.Filetype)
}

// readSdistMetadata scans the tar.gz for the top-level <root>/PKG-INFO entry.
func readSdistMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("gzip: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Metadata{}, fmt.Errorf("tar: %w", err)
		}
		// Entry names are never trusted as paths; only a well-formed
		// "<root>/PKG-INFO" at the archive root is read.
		if hdr.Typeflag != tar.TypeReg || strings.Contains(hdr.Name, "..") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(hdr.Name, "./"), "/")
		if len(parts) == 2 && parts[1] == "PKG-INFO" {
			return parseMetadata(tr)
		}
	}
	return Metadata{}, fmt.Errorf("%s: no PKG-INFO entry", path)
}

// readWheelMetadata reads <name>-<version>.dist-info/METADATA from the wheel zip.
func readWheelMetadata(path string) (Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		parts := strings.Split(zf.Name, "/")
		if len(parts) != 2 || !strings.HasSuffix(parts[0], ".dist-info") || parts[1] != "METADATA" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return Metadata{}, err
		}
		defer rc.Close()
		return parseMetadata(rc)
	}
	return Metadata{}, fmt.Errorf("%s: no .dist-info/METADATA entry", path)
}

// parseMetadata reads RFC 822 style headers up to the first blank line (the
// long description body follows and is not needed).
func parseMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Metadata-Version":
			m.MetadataVersion = value
		case "Name":
			m.Name = value
		case "Version":
			m.Version = value
		case "Summary":
			m.Summary = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Metadata{}, err
	}
	if m.Name == "" || m.Version == "" {
		return Metadata{}, fmt.Errorf("metadata is missing Name or Version")
	}
	if m.MetadataVersion == "" {
		m.MetadataVersion = "2.1"
	}
	return m, nil
}
