package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
)

// Init runs the interactive init wizard.
func Init(args []string) error {
	dir := "."
	reinit := false
	for _, a := range args {
		if a == "--reinit" || a == "-r" {
			reinit = true
		} else {
			dir = a
		}
	}

	projectDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	pypubDir := filepath.Join(projectDir, ".pypub")
	configPath := filepath.Join(pypubDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil && !reinit {
		fmt.Println("A .pypub/config.yaml already exists. Run with --reinit to overwrite.")
		return nil
	}

	fmt.Println("Welcome to pypub init. Let's set up your publish configuration.")
	fmt.Println()

	// --- Step 1: Basic info ---
	var projectName string
	if name, err := detectProjectName(projectDir); err == nil {
		projectName = name
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Package name").
			Description("The distribution name on the index, e.g. pymap3d.").
			Value(&projectName).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("package name cannot be empty")
				}
				return nil
			}),
	)).Run(); err != nil {
		return err
	}

	// --- Step 2: Index ---
	var repoChoice string
	repoOptions := []huh.Option[string]{
		huh.NewOption("PyPI", "https://upload.pypi.org/legacy/"),
		huh.NewOption("TestPyPI", "https://test.pypi.org/legacy/"),
		huh.NewOption("Local pypubd (rehearsal)", "http://127.0.0.1:8730/legacy/"),
		huh.NewOption("Custom URL", "custom"),
	}
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Package index").
			Description("Where `pypub publish` uploads to.").
			Options(repoOptions...).
			Value(&repoChoice),
	)).Run(); err != nil {
		return err
	}

	repository := repoChoice
	if repoChoice == "custom" {
		repository = ""
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Upload endpoint URL").
				Description("e.g. https://pypi.example.com/legacy/").
				Value(&repository).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return fmt.Errorf("must start with http:// or https://")
					}
					return nil
				}),
		)).Run(); err != nil {
			return err
		}
	}

	// --- Step 3: Build details ---
	var pythonVersion, outdir string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Python version").
			Description("e.g. 3.12 — leave empty to accept any python3.").
			Value(&pythonVersion).
			Validate(func(s string) error {
				if s == "" {
					return nil
				}
				if !strings.HasPrefix(s, "3.") {
					return fmt.Errorf("expected a 3.x version")
				}
				return nil
			}),
		huh.NewInput().
			Title("Build output directory").
			Description("Relative to project root.").
			Placeholder("dist").
			Value(&outdir),
	)).Run(); err != nil {
		return err
	}
	if outdir == "" {
		outdir = "dist"
	}

	// --- Step 4: Options ---
	var skipExisting, hasHook, matlabGating bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Skip artifacts the index already has?").
			Description("Otherwise a duplicate upload fails the run.").
			Value(&skipExisting),
		huh.NewConfirm().
			Title("Do you need a local pre-build hook?").
			Description("e.g. generate version files, run a linter").
			Value(&hasHook),
		huh.NewConfirm().
			Title("Does your test suite use MATLAB toolboxes?").
			Description("Adds a gating hint for CI (Mapping / Aerospace).").
			Value(&matlabGating),
	)).Run(); err != nil {
		return err
	}

	hookPath := ""
	if hasHook {
		hookPath = ".pypub/pre-build.sh"
	}

	// --- Generate files ---
	if err := os.MkdirAll(pypubDir, 0755); err != nil {
		return fmt.Errorf("creating .pypub/: %w", err)
	}

	cfg := buildConfigYAML(projectName, repository, pythonVersion, outdir, hookPath, skipExisting)
	if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
		return err
	}
	fmt.Println("Created .pypub/config.yaml")

	if hookPath != "" {
		content := "#!/bin/sh\n# Local pre-build hook\n# Add version generation / lint commands here\nset -e\n\n"
		os.WriteFile(filepath.Join(projectDir, hookPath), []byte(content), 0755)
		fmt.Println("Created .pypub/pre-build.sh")
	}

	if err := ensureGitignore(projectDir); err != nil {
		fmt.Printf("warning: could not update .gitignore: %v\n", err)
	} else {
		fmt.Println("Updated .gitignore (.pypub/ excluded)")
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println("  1. Set your index token: export PYPUB_TOKEN=<pypi-token>")
	fmt.Println("  2. Run: pypub publish")
	if matlabGating {
		fmt.Println("  3. Gate MATLAB test jobs with: pypub toolboxes --require mapping,aerospace")
	}

	return nil
}

func buildConfigYAML(name, repository, python, outdir, hook string, skipExisting bool) string {
	var sb strings.Builder

	sb.WriteString("name: " + name + "\n")
	sb.WriteString("repository: " + repository + "\n")
	sb.WriteString("# token: pypi-...  # Use PYPUB_TOKEN env var instead\n")
	if python != "" {
		sb.WriteString("python: \"" + python + "\"\n")
	}
	sb.WriteString("outdir: " + outdir + "\n")
	sb.WriteString(fmt.Sprintf("skip_existing: %v\n", skipExisting))

	sb.WriteString("\nhooks:\n")
	if hook != "" {
		sb.WriteString("  pre_build: " + hook + "\n")
	} else {
		sb.WriteString("  # pre_build: .pypub/pre-build.sh\n")
	}

	return sb.String()
}

// detectProjectName pulls the name from pyproject.toml when present, so the
// wizard pre-fills the common case.
func detectProjectName(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) != "name" {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`), nil
	}
	return "", fmt.Errorf("no name in pyproject.toml")
}

// ensureGitignore adds ".pypub/" to the project's .gitignore if not already present.
func ensureGitignore(projectDir string) error {
	const entry = ".pypub/"
	gitignorePath := filepath.Join(projectDir, ".gitignore")

	var existing string
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
		for _, line := range strings.Split(existing, "\n") {
			if strings.TrimSpace(line) == entry {
				return nil // already present
			}
		}
	}

	var content string
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		content = existing + "\n" + entry + "\n"
	} else {
		content = existing + entry + "\n"
	}
	return os.WriteFile(gitignorePath, []byte(content), 0644)
}
