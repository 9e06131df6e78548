package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig is loaded from /etc/pypubd/config.yaml on the host running pypubd.
type ServerConfig struct {
	Listen  string `yaml:"listen"` // e.g. ":8730"
	Token   string `yaml:"token"`
	DataDir string `yaml:"data_dir"`
}

// LoadServerConfig reads and parses the daemon config file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("%s: 'token' is required", path)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8730"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "/var/lib/pypubd"
	}

	return &cfg, nil
}
