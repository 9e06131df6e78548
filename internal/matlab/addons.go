package matlab

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnabledState is the tri-state enablement flag of an installed add-on.
// Only Enabled counts as usable.
type EnabledState int

const (
	Disabled EnabledState = 0
	Enabled  EnabledState = 1
	Unknown  EnabledState = 2
)

// UnmarshalJSON accepts both encodings the engine emits for the flag:
// logicals (true/false) and numerics.
func (e *EnabledState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*e = Enabled
		return nil
	case "false":
		*e = Disabled
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("enabled flag %s: %w", data, err)
	}
	switch n {
	case 0:
		*e = Disabled
	case 1:
		*e = Enabled
	default:
		*e = Unknown
	}
	return nil
}

// Addon is one entry of the host's installed add-on registry.
type Addon struct {
	Name       string       `json:"Name"`
	Version    string       `json:"Version"`
	Enabled    EnabledState `json:"Enabled"`
	Identifier string       `json:"Identifier"`
}

// Inspector lists the installed add-ons of a MATLAB environment.
// Implementations must query live state on every call; callers rely on
// repeated calls reflecting changes.
type Inspector interface {
	InstalledAddons() ([]Addon, error)
}
