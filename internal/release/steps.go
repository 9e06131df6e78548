package release

import (
	"fmt"
	"io"
)

// Step is one fallible stage of a publish run.
type Step struct {
	Name string
	Run  func() error
}

// Run executes steps in order, logging each to log, and stops at the first
// failure. There is no retry and no partial-success state: the error of the
// failing step is returned, wrapped with the step name, and the remaining
// steps never run.
func Run(steps []Step, log io.Writer) error {
	for _, s := range steps {
		fmt.Fprintf(log, "[pypub] %s\n", s.Name)
		if err := s.Run(); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}
