package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/EpicWink/pypub/internal/auth"
	"github.com/EpicWink/pypub/internal/dist"
)

// ErrAlreadyExists reports that the index already holds a file with this name.
// The index owns the release record, so this is not retryable with the same
// version.
var ErrAlreadyExists = errors.New("file already exists on the index")

// Client uploads artifacts to a package index speaking the legacy upload API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an upload client for the given repository URL
// (e.g. https://upload.pypi.org/legacy/). Authentication uses the __token__
// pseudo-user with the token as password.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// Upload sends a single artifact as a multipart form. The metadata fields and
// all three digests are taken from the artifact; the file goes in the
// "content" part.
func (c *Client) Upload(a dist.Artifact, log io.Writer) error {
	body, contentType, err := buildForm(a)
	if err != nil {
		return fmt.Errorf("building upload form for %s: %w", a.Filename, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(auth.TokenUser, c.token)
	req.Header.Set("Content-Type", contentType)

	fmt.Fprintf(log, "[pypub] Uploading %s → %s (token %s)\n", a.Filename, c.baseURL, auth.Mask(c.token))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	msg := string(bytes.TrimSpace(respBody))

	switch {
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "already exists"):
		return fmt.Errorf("%s: %w", a.Filename, ErrAlreadyExists)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("upload %s: authentication failed (HTTP %d): %s", a.Filename, resp.StatusCode, msg)
	default:
		return fmt.Errorf("upload %s: HTTP %d: %s", a.Filename, resp.StatusCode, msg)
	}
}

func buildForm(a dist.Artifact) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		":action":           "file_upload",
		"protocol_version":  "1",
		"name":              a.Metadata.Name,
		"version":           a.Metadata.Version,
		"filetype":          a.Filetype,
		"pyversion":         a.Pyversion,
		"metadata_version":  a.Metadata.MetadataVersion,
		"summary":           a.Metadata.Summary,
		"md5_digest":        a.Digests.MD5,
		"sha256_digest":     a.Digests.SHA256,
		"blake2_256_digest": a.Digests.Blake2b,
	}
	// Filename parsing is the fallback when an artifact carries no readable
	// metadata (should not happen for build outputs).
	if fields["name"] == "" {
		fields["name"] = a.Name
	}
	if fields["version"] == "" {
		fields["version"] = a.Version
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	fw, err := mw.CreateFormFile("content", a.Filename)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
