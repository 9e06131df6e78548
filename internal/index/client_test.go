package index

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/EpicWink/pypub/internal/dist"
)

func testArtifact(t *testing.T) dist.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pymap3d-3.1.0.tar.gz")
	if err := os.WriteFile(path, []byte("sdist bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	digests, err := dist.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return dist.Artifact{
		Path:      path,
		Filename:  "pymap3d-3.1.0.tar.gz",
		Name:      "pymap3d",
		Version:   "3.1.0",
		Filetype:  dist.Sdist,
		Pyversion: "source",
		Digests:   digests,
		Metadata: dist.Metadata{
			MetadataVersion: "2.1",
			Name:            "pymap3d",
			Version:         "3.1.0",
			Summary:         "pure-Python coordinate conversions",
		},
	}
}

func TestClientUpload(t *testing.T) {
	artifact := testArtifact(t)

	var gotUser, gotPass string
	gotFields := map[string]string{}
	var gotContent []byte
	var gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		for key := range r.MultipartForm.Value {
			gotFields[key] = r.FormValue(key)
		}
		f, hdr, err := r.FormFile("content")
		if err != nil {
			t.Errorf("content part: %v", err)
			http.Error(w, "no content", http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotFilename = hdr.Filename
		gotContent, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/legacy/", "pypi-secret")
	if err := c.Upload(artifact, io.Discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUser != "__token__" || gotPass != "pypi-secret" {
		t.Errorf("basic auth = %q / %q", gotUser, gotPass)
	}
	if gotFilename != "pymap3d-3.1.0.tar.gz" {
		t.Errorf("uploaded filename = %q", gotFilename)
	}
	if !bytes.Equal(gotContent, []byte("sdist bytes")) {
		t.Errorf("uploaded content = %q", gotContent)
	}

	want := map[string]string{
		":action":           "file_upload",
		"protocol_version":  "1",
		"name":              "pymap3d",
		"version":           "3.1.0",
		"filetype":          "sdist",
		"pyversion":         "source",
		"metadata_version":  "2.1",
		"summary":           "pure-Python coordinate conversions",
		"sha256_digest":     artifact.Digests.SHA256,
		"md5_digest":        artifact.Digests.MD5,
		"blake2_256_digest": artifact.Digests.Blake2b,
	}
	for key, value := range want {
		if gotFields[key] != value {
			t.Errorf("field %s = %q, want %q", key, gotFields[key], value)
		}
	}
}

func TestClientUpload_AlreadyExists(t *testing.T) {
	artifact := testArtifact(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "400 File already exists.", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "pypi-secret").Upload(artifact, io.Discard)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestClientUpload_AuthFailure(t *testing.T) {
	artifact := testArtifact(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid or non-existent authentication information.", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "bad-token").Upload(artifact, io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Error("auth failure must not map to ErrAlreadyExists")
	}
}

func TestClientUpload_ServerError(t *testing.T) {
	artifact := testArtifact(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "pypi-secret").Upload(artifact, io.Discard); err == nil {
		t.Fatal("expected error")
	}
}

func TestClientUpload_FallbackToFilenameFields(t *testing.T) {
	artifact := testArtifact(t)
	artifact.Metadata = dist.Metadata{} // no readable metadata

	gotFields := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		gotFields["name"] = r.FormValue("name")
		gotFields["version"] = r.FormValue("version")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "pypi-secret").Upload(artifact, io.Discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFields["name"] != "pymap3d" || gotFields["version"] != "3.1.0" {
		t.Errorf("fallback fields = %v", gotFields)
	}
}
