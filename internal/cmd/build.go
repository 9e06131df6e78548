package cmd

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/EpicWink/pypub/internal/config"
	"github.com/EpicWink/pypub/internal/dist"
	"github.com/EpicWink/pypub/internal/release"
)

// Build runs the build subcommand: everything publish does up to and
// including the artifact inventory, without touching the index.
func Build(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", ".", "Project directory (default: current directory)")
	noDepsRefresh := fs.Bool("no-deps-refresh", false, "Skip upgrading pip and installing the build frontend")
	if err := fs.Parse(args); err != nil {
		return err
	}

	projectDir, err := filepath.Abs(*dir)
	if err != nil {
		return fmt.Errorf("resolving project dir: %w", err)
	}

	cfg, err := config.LoadProjectConfig(projectDir)
	if err != nil {
		return err
	}

	var (
		python    string
		artifacts []dist.Artifact
	)
	steps := buildSteps(cfg, projectDir, &python, &artifacts, *noDepsRefresh, stdout, stderr)
	if err := release.Run(steps, stdout); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "[pypub] Built %d artifact(s) in %s\n", len(artifacts), cfg.Outdir)
	return nil
}
