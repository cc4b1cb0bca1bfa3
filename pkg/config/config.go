// Package config provides configuration loading and management for
// mrikspace tools. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel
		// processing inside the transforms and estimators
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Density estimation parameters
	Density struct {
		// Estimator selects the density-compensation engine:
		// "gridding" or "neighbors"
		Estimator string `yaml:"estimator"`

		// OversamplingFactor is the working-grid oversampling of the
		// gridding estimator
		OversamplingFactor float64 `yaml:"oversamplingFactor"`

		// KernelHalfWidth is the Kaiser-Bessel kernel half-width in
		// grid cells
		KernelHalfWidth int `yaml:"kernelHalfWidth"`

		// Neighbors is the neighbor rank of the k-d tree estimator
		Neighbors int `yaml:"neighbors"`
	} `yaml:"density"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Density.Estimator = "gridding"
	cfg.Density.OversamplingFactor = 1.25
	cfg.Density.KernelHalfWidth = 3
	cfg.Density.Neighbors = 4

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
