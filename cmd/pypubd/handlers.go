package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/EpicWink/pypub/internal/api"
	"github.com/EpicWink/pypub/internal/index"
)

const defaultMaxUpload = 256 << 20

type server struct {
	store *index.Store
	log   zerolog.Logger

	// maxUpload bounds a single artifact upload, multipart overhead included.
	maxUpload int64

	// Uploads are serialized so the exists-then-store pair stays atomic.
	mu sync.Mutex
}

// handleUpload accepts a legacy-API multipart upload: metadata fields plus the
// artifact in the "content" part. The declared sha256 digest is verified
// against the received bytes before anything is stored.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// ParseMultipartForm's argument is only a memory threshold; oversized
	// parts would spill to temp files. The body reader enforces the limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "artifact exceeds the upload size limit", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	version := r.FormValue("version")
	declaredSHA := r.FormValue("sha256_digest")
	if name == "" || version == "" || declaredSHA == "" {
		http.Error(w, "missing name, version or sha256_digest", http.StatusBadRequest)
		return
	}

	f, hdr, err := r.FormFile("content")
	if err != nil {
		http.Error(w, "missing content part", http.StatusBadRequest)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "reading content: "+err.Error(), http.StatusBadRequest)
		return
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != declaredSHA {
		s.log.Warn().Str("filename", hdr.Filename).Msg("digest mismatch")
		http.Error(w, "sha256_digest does not match uploaded content", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Exists(name, version, hdr.Filename) {
		http.Error(w, "File already exists.", http.StatusBadRequest)
		return
	}
	if err := s.store.Put(name, version, hdr.Filename, bytes.NewReader(content)); err != nil {
		s.log.Error().Err(err).Str("filename", hdr.Filename).Msg("store failed")
		http.Error(w, "storing artifact: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info().
		Str("name", name).
		Str("version", version).
		Str("filename", hdr.Filename).
		Int("size", len(content)).
		Msg("artifact accepted")
	w.WriteHeader(http.StatusOK)
}

// handleList returns all stored artifacts.
func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := s.store.List()
	if err != nil {
		s.log.Error().Err(err).Msg("listing store failed")
		http.Error(w, "listing store: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.PackageList{Packages: entries})
}
