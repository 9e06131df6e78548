package release

import (
	"fmt"
	"io"
	"os/exec"
)

// RunHook executes a hook script via /bin/sh with the project root as working
// directory, so the script needs no executable bit. Output is written to
// stdout/stderr. Returns an error if the script exits non-zero.
func RunHook(scriptPath, projectDir string, stdout, stderr io.Writer) error {
	fmt.Fprintf(stdout, "[pypub] Running hook: %s\n", scriptPath)
	cmd := exec.Command("/bin/sh", scriptPath)
	cmd.Dir = projectDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hook %q failed: %w", scriptPath, err)
	}
	return nil
}
