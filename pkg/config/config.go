// Package config handles configuration for conveyor.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (conveyor.yaml).
type Config struct {
	// Execution settings
	Parallelism int  `yaml:"parallelism"` // Max concurrent job instances (0 = sequential)
	StopOnFail  bool `yaml:"stopOnFail"`  // Cancel remaining instances on first failure

	// Paths
	OutputDir   string `yaml:"outputDir"`   // Report output directory
	HistoryDB   string `yaml:"historyDb"`   // Run history database path
	SecretsFile string `yaml:"secretsFile"` // Secrets file path

	// Environment variables injected into every workspace
	Env map[string]string `yaml:"env"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for conveyor.yaml or conveyor.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try conveyor.yaml first
	configPath := filepath.Join(dir, "conveyor.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try conveyor.yml
	configPath = filepath.Join(dir, "conveyor.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// LoadSecrets reads a flat key/value YAML file of secret bindings.
// A missing path is not an error; it yields an empty map.
func LoadSecrets(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path) //#nosec G304 -- user-provided secrets file
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	secrets := make(map[string]string)
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}
	return secrets, nil
}
