// Package config provides configuration loading and management for
// tomosynth. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Synthesis parameters for the analytic sinogram builder
	Synthesis struct {
		// VolumeSize is the object grid size N; the output has N slices
		VolumeSize int `yaml:"volumeSize"`

		// DetectorCount is the number of detector bins P
		DetectorCount int `yaml:"detectorCount"`

		// AnglesStart and AnglesStop bound the projection angle span in degrees
		AnglesStart float64 `yaml:"anglesStart"`
		AnglesStop  float64 `yaml:"anglesStop"`

		// AnglesCount is the number of projections over the span
		AnglesCount int `yaml:"anglesCount"`

		// Centering is the object-centre convention, "astra" or "radon"
		Centering string `yaml:"centering"`

		// LibraryPath points at the model library file (.dat or .yaml)
		LibraryPath string `yaml:"libraryPath"`
	} `yaml:"synthesis"`

	// Deformation parameters for the perspective warp
	Deformation struct {
		// RFP is proportional to the focal-point distance
		RFP float64 `yaml:"rfp"`

		// AngleDeg is the deformation angle in degrees
		AngleDeg float64 `yaml:"angleDeg"`
	} `yaml:"deformation"`

	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many goroutines to use for the
		// slice- and row-parallel loops
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Dir is where exported images are written
		Dir string `yaml:"dir"`

		// SavePlanes determines whether sinogram planes are exported
		SavePlanes bool `yaml:"savePlanes"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Synthesis.VolumeSize = 256
	cfg.Synthesis.DetectorCount = 300
	cfg.Synthesis.AnglesStart = 0
	cfg.Synthesis.AnglesStop = 180
	cfg.Synthesis.AnglesCount = 180
	cfg.Synthesis.Centering = "astra"
	cfg.Synthesis.LibraryPath = "models/library.yaml"

	cfg.Deformation.RFP = 0.05
	cfg.Deformation.AngleDeg = 0

	cfg.Processing.NumWorkers = runtime.NumCPU()

	cfg.Output.Dir = "output"
	cfg.Output.SavePlanes = false
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
