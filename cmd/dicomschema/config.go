package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the YAML run configuration: which schema to load, where to
// write generated files, and any pre-selected conflict resolutions.
type RunConfig struct {
	Schema      string            `yaml:"schema"`
	Output      string            `yaml:"output"`
	Resolutions map[string]string `yaml:"resolutions,omitempty"`
	Quiet       bool              `yaml:"quiet,omitempty"`
}

// LoadRunConfig reads a run configuration from a YAML file.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveRunConfig writes a run configuration as YAML.
func SaveRunConfig(path string, cfg RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
