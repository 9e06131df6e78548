package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectConfig is loaded from .pypub/config.yaml in the project root.
type ProjectConfig struct {
	Name         string       `yaml:"name"`
	Repository   string       `yaml:"repository"`
	Token        string       `yaml:"token"`
	Python       string       `yaml:"python"`
	Outdir       string       `yaml:"outdir"`
	SkipExisting bool         `yaml:"skip_existing"`
	Hooks        ProjectHooks `yaml:"hooks"`
}

// ProjectHooks holds paths to hook scripts (relative to project root).
type ProjectHooks struct {
	PreBuild string `yaml:"pre_build"`
}

// LoadProjectConfig reads and parses .pypub/config.yaml from the given directory.
func LoadProjectConfig(projectDir string) (*ProjectConfig, error) {
	path := projectDir + "/.pypub/config.yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	if cfg.Name == "" {
		return nil, fmt.Errorf("%s: 'name' is required", path)
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("%s: 'repository' is required", path)
	}
	if !strings.HasPrefix(cfg.Repository, "http://") && !strings.HasPrefix(cfg.Repository, "https://") {
		return nil, fmt.Errorf("%s: 'repository' must be an http(s) URL", path)
	}

	// Apply defaults
	if cfg.Outdir == "" {
		cfg.Outdir = "dist"
	}

	return &cfg, nil
}
