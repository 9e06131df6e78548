package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/EpicWink/pypub/internal/config"
	"github.com/EpicWink/pypub/internal/dist"
	"github.com/EpicWink/pypub/internal/index"
	"github.com/EpicWink/pypub/internal/receipt"
	"github.com/EpicWink/pypub/internal/release"
)

// Publish runs the publish subcommand: build the project's distributions and
// upload them to the configured index. Steps run strictly in order and the
// first failure aborts the run; a failed run never produces a partial publish
// beyond the files the index already accepted.
func Publish(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
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

	token, err := resolveToken(cfg, stderr)
	if err != nil {
		return err
	}

	receiptDir, receiptDirErr := receipt.DefaultDir()
	if receiptDirErr == nil {
		if last, err := receipt.LoadLast(receiptDir, cfg.Name); err == nil && last != nil {
			fmt.Fprintf(stdout, "[pypub] Last publish: %s at %s\n", last.ID, last.PublishedAt.Format(time.RFC3339))
		}
	}

	var (
		python    string
		artifacts []dist.Artifact
		skipped   = map[string]bool{}
	)
	client := index.NewClient(cfg.Repository, token)

	steps := buildSteps(cfg, projectDir, &python, &artifacts, *noDepsRefresh, stdout, stderr)
	steps = append(steps, release.Step{
		Name: "Uploading artifacts to " + cfg.Repository,
		Run: func() error {
			for _, a := range artifacts {
				err := client.Upload(a, stdout)
				if errors.Is(err, index.ErrAlreadyExists) && cfg.SkipExisting {
					fmt.Fprintf(stdout, "[pypub] Skipping %s: already on the index\n", a.Filename)
					skipped[a.Filename] = true
					continue
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	})

	if err := release.Run(steps, stdout); err != nil {
		return err
	}

	// The publish itself succeeded; a receipt write failure must not turn it
	// into a failed run.
	if receiptDirErr != nil {
		fmt.Fprintf(stderr, "warning: could not write publish receipt: %v\n", receiptDirErr)
	} else {
		r := receipt.New(cfg.Name, cfg.Repository, artifacts, skipped)
		if err := receipt.Save(receiptDir, r); err != nil {
			fmt.Fprintf(stderr, "warning: could not write publish receipt: %v\n", err)
		} else {
			fmt.Fprintf(stdout, "[pypub] Recorded publish %s\n", r.ID)
		}
	}

	fmt.Fprintf(stdout, "[pypub] Published %s → %s\n", cfg.Name, cfg.Repository)
	return nil
}

// buildSteps assembles the shared build half of the sequence: hook,
// interpreter, deps, build, inventory. python and artifacts are filled in as
// the steps run.
func buildSteps(cfg *config.ProjectConfig, projectDir string, python *string, artifacts *[]dist.Artifact, noDepsRefresh bool, stdout, stderr io.Writer) []release.Step {
	var steps []release.Step

	if cfg.Hooks.PreBuild != "" {
		hookPath := filepath.Join(projectDir, cfg.Hooks.PreBuild)
		steps = append(steps, release.Step{
			Name: "Running pre-build hook",
			Run:  func() error { return release.RunHook(hookPath, projectDir, stdout, stderr) },
		})
	}

	steps = append(steps, release.Step{
		Name: "Resolving Python interpreter",
		Run: func() error {
			var err error
			*python, err = release.FindInterpreter(cfg.Python)
			if err == nil {
				fmt.Fprintf(stdout, "[pypub] Using %s\n", *python)
			}
			return err
		},
	})

	if !noDepsRefresh {
		steps = append(steps,
			release.Step{
				Name: "Upgrading pip",
				Run:  func() error { return release.UpgradePip(*python, stdout) },
			},
			release.Step{
				Name: "Installing build frontend",
				Run:  func() error { return release.InstallBuild(*python, stdout) },
			},
		)
	}

	outdir := filepath.Join(projectDir, cfg.Outdir)
	steps = append(steps,
		release.Step{
			Name: "Building distributions",
			Run:  func() error { return release.Build(*python, projectDir, cfg.Outdir, stdout) },
		},
		release.Step{
			Name: "Collecting artifacts from " + cfg.Outdir,
			Run: func() error {
				var err error
				*artifacts, err = dist.Collect(outdir)
				if err != nil {
					return err
				}
				for i, a := range *artifacts {
					m, err := dist.ReadMetadata(a)
					if err != nil {
						return err
					}
					(*artifacts)[i].Metadata = m
					fmt.Fprintf(stdout, "[pypub] %s (%s %s, sha256 %s)\n", a.Filename, a.Filetype, a.Version, a.Digests.SHA256[:12])
				}
				return nil
			},
		},
	)

	return steps
}

// resolveToken applies the credential precedence: env var beats config file,
// and a token hardcoded in the config file earns a warning.
func resolveToken(cfg *config.ProjectConfig, stderr io.Writer) (string, error) {
	token := os.Getenv("PYPUB_TOKEN")
	if token == "" && cfg.Token != "" {
		fmt.Fprintln(stderr, "warning: token is hardcoded in .pypub/config.yaml — consider using PYPUB_TOKEN env var instead")
		token = cfg.Token
	}
	if token == "" {
		return "", fmt.Errorf("no upload token: set PYPUB_TOKEN or add 'token:' to .pypub/config.yaml")
	}
	return token, nil
}
