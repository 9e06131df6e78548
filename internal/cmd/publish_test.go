package cmd

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/EpicWink/pypub/internal/config"
	"github.com/EpicWink/pypub/internal/dist"
	"github.com/EpicWink/pypub/internal/index"
	"github.com/EpicWink/pypub/internal/receipt"
	"github.com/EpicWink/pypub/internal/release"
)

func TestResolveToken_EnvWins(t *testing.T) {
	t.Setenv("PYPUB_TOKEN", "env-token")
	var stderr bytes.Buffer

	token, err := resolveToken(&config.ProjectConfig{Token: "file-token"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if token != "env-token" {
		t.Errorf("token = %q, want env-token", token)
	}
	if stderr.Len() != 0 {
		t.Errorf("no warning expected when env var is set: %s", stderr.String())
	}
}

func TestResolveToken_ConfigFallbackWarns(t *testing.T) {
	t.Setenv("PYPUB_TOKEN", "")
	var stderr bytes.Buffer

	token, err := resolveToken(&config.ProjectConfig{Token: "file-token"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if token != "file-token" {
		t.Errorf("token = %q, want file-token", token)
	}
	if !strings.Contains(stderr.String(), "hardcoded") {
		t.Errorf("expected hardcoded-token warning, got: %s", stderr.String())
	}
}

func TestResolveToken_Missing(t *testing.T) {
	t.Setenv("PYPUB_TOKEN", "")
	if _, err := resolveToken(&config.ProjectConfig{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error when no token is available")
	}
}

// writeTestSdist drops a minimal sdist with a PKG-INFO at the archive root.
func writeTestSdist(t *testing.T, dir, name, version string) {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	pkgInfo := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\nSummary: test package\n\nbody\n", name, version)
	hdr := &tar.Header{
		Name:     name + "-" + version + "/PKG-INFO",
		Mode:     0644,
		Size:     int64(len(pkgInfo)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(pkgInfo)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+"-"+version+".tar.gz"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

// setupPublishProject builds a project directory with a config, a pre-built
// sdist in dist/ and a fake python3 on PATH, and points HOME at a temp dir so
// receipts land there.
func setupPublishProject(t *testing.T, repository string, skipExisting bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts need a POSIX shell")
	}

	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, ".pypub"), 0755); err != nil {
		t.Fatal(err)
	}
	cfgYAML := fmt.Sprintf("name: pymap3d\nrepository: %s\nskip_existing: %v\n", repository, skipExisting)
	if err := os.WriteFile(filepath.Join(project, ".pypub", "config.yaml"), []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(project, "dist"), 0755); err != nil {
		t.Fatal(err)
	}
	writeTestSdist(t, filepath.Join(project, "dist"), "pymap3d", "3.1.0")

	bin := t.TempDir()
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then\n  echo \"Python 3.12.4\"\nfi\nexit 0\n"
	if err := os.WriteFile(filepath.Join(bin, "python3"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PYPUB_TOKEN", "test-token")
	return project
}

func TestPublish_SkipExistingContinues(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "File already exists.", http.StatusBadRequest)
	}))
	t.Cleanup(ts.Close)

	project := setupPublishProject(t, ts.URL, true)

	var stdout, stderr bytes.Buffer
	if err := Publish([]string{"--dir", project, "--no-deps-refresh"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v\nstdout:\n%s\nstderr:\n%s", err, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), "Skipping pymap3d-3.1.0.tar.gz") {
		t.Errorf("skip notice missing from output:\n%s", stdout.String())
	}

	base, err := receipt.DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	last, err := receipt.LoadLast(base, "pymap3d")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil {
		t.Fatal("no receipt written for the skipped-but-successful run")
	}
	if len(last.Artifacts) != 1 || !last.Artifacts[0].Skipped {
		t.Errorf("receipt artifacts = %+v, want one skipped entry", last.Artifacts)
	}

	// A second run reports the previous publish.
	stdout.Reset()
	if err := Publish([]string{"--dir", project, "--no-deps-refresh"}, &stdout, &stderr); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(stdout.String(), "Last publish: "+last.ID) {
		t.Errorf("previous publish not reported:\n%s", stdout.String())
	}
}

func TestPublish_DuplicateFailsWithoutSkipExisting(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "File already exists.", http.StatusBadRequest)
	}))
	t.Cleanup(ts.Close)

	project := setupPublishProject(t, ts.URL, false)

	var stdout, stderr bytes.Buffer
	err := Publish([]string{"--dir", project, "--no-deps-refresh"}, &stdout, &stderr)
	if !errors.Is(err, index.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	// A failed run leaves no receipt behind.
	base, derr := receipt.DefaultDir()
	if derr != nil {
		t.Fatal(derr)
	}
	last, lerr := receipt.LoadLast(base, "pymap3d")
	if lerr != nil {
		t.Fatal(lerr)
	}
	if last != nil {
		t.Errorf("receipt written for a failed run: %+v", last)
	}
}

func TestPublish_WarnsWhenReceiptDirUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	project := setupPublishProject(t, ts.URL, false)
	t.Setenv("HOME", "")

	var stdout, stderr bytes.Buffer
	if err := Publish([]string{"--dir", project, "--no-deps-refresh"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr.String())
	}
	if !strings.Contains(stderr.String(), "could not write publish receipt") {
		t.Errorf("missing receipt warning:\n%s", stderr.String())
	}
}

func TestBuildSteps_DepsRefreshToggle(t *testing.T) {
	cfg := &config.ProjectConfig{Name: "pymap3d", Outdir: "dist"}
	var python string
	var artifacts []dist.Artifact

	names := func(steps []release.Step) []string {
		out := make([]string, len(steps))
		for i, s := range steps {
			out[i] = s.Name
		}
		return out
	}

	full := names(buildSteps(cfg, "/tmp/project", &python, &artifacts, false, io.Discard, io.Discard))
	wantFull := []string{
		"Resolving Python interpreter",
		"Upgrading pip",
		"Installing build frontend",
		"Building distributions",
		"Collecting artifacts from dist",
	}
	if !reflect.DeepEqual(full, wantFull) {
		t.Errorf("steps = %v, want %v", full, wantFull)
	}

	trimmed := names(buildSteps(cfg, "/tmp/project", &python, &artifacts, true, io.Discard, io.Discard))
	wantTrimmed := []string{
		"Resolving Python interpreter",
		"Building distributions",
		"Collecting artifacts from dist",
	}
	if !reflect.DeepEqual(trimmed, wantTrimmed) {
		t.Errorf("steps with --no-deps-refresh = %v, want %v", trimmed, wantTrimmed)
	}

	cfg.Hooks.PreBuild = "scripts/pre-build.sh"
	withHook := names(buildSteps(cfg, "/tmp/project", &python, &artifacts, true, io.Discard, io.Discard))
	if len(withHook) == 0 || withHook[0] != "Running pre-build hook" {
		t.Errorf("steps with hook = %v, want pre-build hook first", withHook)
	}
}
