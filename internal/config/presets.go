package config

import "sort"

var Presets = map[string]map[string]*Config{
	"pid": {
		"unit-step": {
			Model: "pid", FMIVersion: "2.0", StopTime: 1.0, StepSize: 0.1,
			Inputs:  map[string]float64{"Integrator.IN1": 1.0},
			Outputs: []string{"OUT"},
		},
		"fine": {
			Model: "pid", FMIVersion: "2.0", StopTime: 1.0, StepSize: 0.01,
			Inputs:  map[string]float64{"Integrator.IN1": 1.0},
			Outputs: []string{"OUT", "Integrator.OUT1", "Derivator.OUT1"},
		},
		"offset": {
			Model: "pid", FMIVersion: "3.0", StopTime: 2.0, StepSize: 0.1,
			Inputs:      map[string]float64{"Integrator.IN1": 0.5},
			ModelParams: map[string]float64{"Integrator.IC": 0.0},
			Outputs:     []string{"OUT"},
		},
	},
	"ball": {
		"drop": {
			Model: "ball", FMIVersion: "2.0", StopTime: 20.0, StepSize: 0.05,
			Outputs: []string{"h", "v", "bounces"},
		},
		"superball": {
			Model: "ball", FMIVersion: "3.0", StopTime: 30.0, StepSize: 0.05,
			ModelParams: map[string]float64{"e": 0.95, "max_bounces": 20},
			Outputs:     []string{"h", "v", "bounces"},
		},
		"moon": {
			Model: "ball", FMIVersion: "2.0", StopTime: 60.0, StepSize: 0.1,
			ModelParams: map[string]float64{"g": 1.62},
			Outputs:     []string{"h", "v"},
		},
	},
}

// GetPreset returns a copy, so callers may modify it.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
