package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/EpicWink/pypub/internal/matlab"
)

// ErrToolboxMissing reports that a toolbox named via --require is not
// installed and enabled. The CLI maps it to a distinct exit code so CI jobs
// can gate test suites on it.
var ErrToolboxMissing = errors.New("required toolbox not available")

// Toolboxes runs the toolboxes subcommand: query the MATLAB add-on registry
// and report whether the Mapping and Aerospace toolboxes are usable. A
// registry query failure is reported as an error, never as "not installed".
func Toolboxes(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("toolboxes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	require := fs.String("require", "", "Comma-separated toolboxes that must be available: mapping, aerospace")
	engine := fs.String("matlab", "", "MATLAB executable (default: matlab from PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return toolboxes(matlab.NewEngineInspector(*engine), *asJSON, *require, stdout)
}

func toolboxes(insp matlab.Inspector, asJSON bool, require string, stdout io.Writer) error {
	report, err := matlab.Toolboxes(insp)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintf(stdout, "[pypub] %s: %s\n", matlab.MappingToolbox, availability(report.Mapping))
		fmt.Fprintf(stdout, "[pypub] %s: %s\n", matlab.AerospaceToolbox, availability(report.Aerospace))
	}

	if require == "" {
		return nil
	}
	for _, want := range strings.Split(require, ",") {
		switch strings.TrimSpace(want) {
		case "":
		case "mapping":
			if !report.Mapping {
				return fmt.Errorf("%w: %s", ErrToolboxMissing, matlab.MappingToolbox)
			}
		case "aerospace":
			if !report.Aerospace {
				return fmt.Errorf("%w: %s", ErrToolboxMissing, matlab.AerospaceToolbox)
			}
		default:
			return fmt.Errorf("unknown toolbox %q in --require (want mapping or aerospace)", want)
		}
	}
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "not available"
}
