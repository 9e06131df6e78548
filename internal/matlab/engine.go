package matlab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
)

// addonQuery prints the add-on registry as a JSON array on stdout.
const addonQuery = "disp(jsonencode(table2struct(matlab.addons.installedAddons)))"

// EngineInspector queries the add-on registry by running the MATLAB engine in
// batch mode. Every InstalledAddons call starts a fresh engine process, so the
// result always reflects live state.
type EngineInspector struct {
	exe string
}

// NewEngineInspector creates an inspector using the given engine executable.
// An empty exe means "matlab" from PATH.
func NewEngineInspector(exe string) *EngineInspector {
	if exe == "" {
		exe = "matlab"
	}
	return &EngineInspector{exe: exe}
}

// InstalledAddons implements Inspector.
func (e *EngineInspector) InstalledAddons() ([]Addon, error) {
	path, err := exec.LookPath(e.exe)
	if err != nil {
		return nil, fmt.Errorf("matlab engine %q not found in PATH: %w", e.exe, err)
	}

	cmd := exec.Command(path, "-batch", addonQuery)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("querying add-on registry: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return decodeAddons(stdout.Bytes())
}

// decodeAddons parses the engine output, tolerating banner noise before the
// JSON payload. A one-row table jsonencodes to a bare object rather than an
// array; both forms are accepted.
func decodeAddons(out []byte) ([]Addon, error) {
	i := bytes.IndexAny(out, "[{")
	if i < 0 {
		return nil, fmt.Errorf("no JSON payload in engine output: %q", bytes.TrimSpace(out))
	}
	payload := bytes.TrimSpace(out[i:])

	if payload[0] == '{' {
		var a Addon
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("parsing add-on registry: %w", err)
		}
		return []Addon{a}, nil
	}

	var addons []Addon
	if err := json.Unmarshal(payload, &addons); err != nil {
		return nil, fmt.Errorf("parsing add-on registry: %w", err)
	}
	return addons, nil
}
