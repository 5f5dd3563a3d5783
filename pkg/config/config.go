// Package config provides configuration loading and management for beamdose.
// It handles loading treatment plan configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"beamdose/internal/models"
)

// BeamConfig describes one beam entry in the plan file.
type BeamConfig struct {
	// Angle is the beam incidence angle in degrees (counter-clockwise,
	// 0 = beam entering from the anterior direction).
	Angle float64 `yaml:"angle"`

	// Label is an optional name used in logs and the report.
	Label string `yaml:"label"`
}

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Input files
	Inputs struct {
		// AnatomyFile is the patient anatomy grid CSV.
		AnatomyFile string `yaml:"anatomyFile"`

		// DoseTableFile is the measured percent-depth-dose table CSV.
		DoseTableFile string `yaml:"doseTableFile"`
	} `yaml:"inputs"`

	// Beams lists the beams to apply, in order. Dose accumulates
	// additively across all of them.
	Beams []BeamConfig `yaml:"beams"`

	// Output parameters
	Output struct {
		// ReportFile receives the row-major dose grid; empty means stdout.
		ReportFile string `yaml:"reportFile"`

		// HeatmapFile receives a dose heatmap PNG; empty disables it.
		HeatmapFile string `yaml:"heatmapFile"`

		// LogTargetPoints logs every grid point classified as the
		// treatment target structure.
		LogTargetPoints bool `yaml:"logTargetPoints"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values: a single
// anterior beam and a stdout report.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Beams = []BeamConfig{{Angle: 0, Label: "anterior"}}

	cfg.Output.LogTargetPoints = false
	cfg.Output.Verbose = true

	return cfg
}

// Plan converts the configured beam list into the plan applied by the
// engine.
func (c *Config) Plan() models.Plan {
	beams := make([]models.Beam, len(c.Beams))
	for i, b := range c.Beams {
		beams[i] = models.Beam{AngleDegrees: b.Angle, Label: b.Label}
	}
	return models.Plan{Beams: beams}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Inputs.AnatomyFile == "" {
		return fmt.Errorf("inputs.anatomyFile is required")
	}
	if c.Inputs.DoseTableFile == "" {
		return fmt.Errorf("inputs.doseTableFile is required")
	}
	if len(c.Beams) == 0 {
		return fmt.Errorf("at least one beam is required")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
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

// SaveConfig saves the configuration to a YAML file.
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
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
