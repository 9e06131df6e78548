package matlab

import "fmt"

// Toolbox names the test suites gate on.
const (
	MappingToolbox   = "Mapping Toolbox"
	AerospaceToolbox = "Aerospace Toolbox"
)

// Report is the two-field record of the aggregated toolbox check.
type Report struct {
	Mapping   bool `json:"mapping"`
	Aerospace bool `json:"aerospace"`
}

// HasToolbox reports whether the named toolbox is installed AND enabled.
// The registry is re-queried on every call. A query failure propagates:
// "cannot query" must never read as "not installed".
func HasToolbox(insp Inspector, name string) (bool, error) {
	addons, err := insp.InstalledAddons()
	if err != nil {
		return false, fmt.Errorf("querying installed add-ons: %w", err)
	}
	for _, a := range addons {
		if a.Name == name && a.Enabled == Enabled {
			return true, nil
		}
	}
	return false, nil
}

// Toolboxes checks the Mapping and Aerospace toolboxes independently. Each
// field performs its own registry query, so the two fields may observe
// different snapshots if add-on state changes mid-call.
func Toolboxes(insp Inspector) (Report, error) {
	var r Report
	var err error
	if r.Mapping, err = HasToolbox(insp, MappingToolbox); err != nil {
		return Report{}, err
	}
	if r.Aerospace, err = HasToolbox(insp, AerospaceToolbox); err != nil {
		return Report{}, err
	}
	return r, nil
}
