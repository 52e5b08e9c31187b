package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/master"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "pid"
	DefaultFMIVersion = "2.0"
	DefaultStepSize   = 0.1
	DefaultStopTime   = 10.0
)

// Config describes one experiment. Files ending in .toml are read and
// written as TOML, everything else as YAML.
type Config struct {
	Model         string             `yaml:"model" toml:"model"`
	FMIVersion    string             `yaml:"fmi_version" toml:"fmi_version"`
	Kind          string             `yaml:"kind" toml:"kind"`
	StartTime     float64            `yaml:"start_time" toml:"start_time"`
	StopTime      float64            `yaml:"stop_time" toml:"stop_time"`
	StepSize      float64            `yaml:"step_size" toml:"step_size"`
	InternalSteps int                `yaml:"internal_steps,omitempty" toml:"internal_steps,omitempty"`
	Tolerance     float64            `yaml:"tolerance,omitempty" toml:"tolerance,omitempty"`
	Logging       bool               `yaml:"logging" toml:"logging"`
	Inputs        map[string]float64 `yaml:"inputs,omitempty" toml:"inputs,omitempty"`
	Outputs       []string           `yaml:"outputs,omitempty" toml:"outputs,omitempty"`
	ModelParams   map[string]float64 `yaml:"model_params,omitempty" toml:"model_params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		FMIVersion: DefaultFMIVersion,
		Kind:       "cs",
		StopTime:   DefaultStopTime,
		StepSize:   DefaultStepSize,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if !(c.StepSize > 0) {
		return fmt.Errorf("step_size must be positive, got %g", c.StepSize)
	}
	if c.StopTime <= c.StartTime {
		return fmt.Errorf("stop_time %g must be after start_time %g", c.StopTime, c.StartTime)
	}
	if c.InternalSteps < 0 {
		return fmt.Errorf("internal_steps must not be negative")
	}
	if _, err := c.FMUKind(); err != nil {
		return err
	}
	return nil
}

// FMUKind maps the kind field ("cs", "me" or empty).
func (c *Config) FMUKind() (fmu.Kind, error) {
	switch strings.ToLower(c.Kind) {
	case "", "cs", "cosimulation":
		return fmu.CoSimulation, nil
	case "me", "modelexchange":
		return fmu.ModelExchange, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", c.Kind)
	}
}

func (c *Config) Options() fmu.Options {
	kind, _ := c.FMUKind()
	return fmu.Options{Kind: kind, LoggingOn: c.Logging, InternalSteps: c.InternalSteps}
}

func (c *Config) Master() master.Config {
	return master.Config{
		StartTime: c.StartTime,
		StopTime:  c.StopTime,
		StepSize:  c.StepSize,
		Tolerance: c.Tolerance,
		Params:    c.ModelParams,
		Inputs:    c.Inputs,
		Outputs:   c.Outputs,
	}
}
