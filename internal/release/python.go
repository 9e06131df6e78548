package release

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// FindInterpreter locates a Python interpreter. With a version like "3.12" it
// tries python3.12, python3 and python in that order and verifies the
// reported version actually starts with it; with an empty version the first
// interpreter found wins.
func FindInterpreter(version string) (string, error) {
	candidates := []string{"python3", "python"}
	if version != "" {
		candidates = append([]string{"python" + version}, candidates...)
	}

	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		reported, err := interpreterVersion(path)
		if err != nil {
			continue
		}
		if version == "" || reported == version || strings.HasPrefix(reported, version+".") {
			return path, nil
		}
	}

	if version != "" {
		return "", fmt.Errorf("no Python %s interpreter found in PATH", version)
	}
	return "", fmt.Errorf("no Python interpreter found in PATH")
}

// interpreterVersion runs `<exe> --version` and returns the bare version
// number from its "Python X.Y.Z" output.
func interpreterVersion(exe string) (string, error) {
	var out bytes.Buffer
	cmd := exec.Command(exe, "--version")
	cmd.Stdout = &out
	cmd.Stderr = &out // Python 2 printed the version on stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s --version: %w", exe, err)
	}

	fields := strings.Fields(out.String())
	if len(fields) < 2 || fields[0] != "Python" {
		return "", fmt.Errorf("%s --version: unexpected output %q", exe, strings.TrimSpace(out.String()))
	}
	return fields[1], nil
}

// UpgradePip upgrades the package installer itself.
func UpgradePip(python string, log io.Writer) error {
	return runCmd(log, "", python, "-m", "pip", "install", "--upgrade", "pip")
}

// InstallBuild installs the build frontend.
func InstallBuild(python string, log io.Writer) error {
	return runCmd(log, "", python, "-m", "pip", "install", "build")
}

// Build produces the distributable artifacts for projectDir into outdir
// (relative to projectDir).
func Build(python, projectDir, outdir string, log io.Writer) error {
	return runCmd(log, projectDir, python, "-m", "build", "--outdir", outdir, ".")
}

func runCmd(log io.Writer, dir, name string, args ...string) error {
	fmt.Fprintf(log, "[pypub] $ %s %s\n", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = log
	cmd.Stderr = log
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
