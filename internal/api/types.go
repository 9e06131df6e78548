package api

import "time"

// PackageList is the response body of pypubd's GET /packages.
type PackageList struct {
	Packages []PackageEntry `json:"packages"`
}

// PackageEntry describes one stored artifact.
type PackageEntry struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Filename   string    `json:"filename"`
	SHA256     string    `json:"sha256"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
