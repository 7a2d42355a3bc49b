package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetCatalogYAML []byte

type presetCatalog struct {
	Presets []presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Name          string      `yaml:"name"`
	WheelDiameter float64     `yaml:"wheel_diameter"`
	DriveStages   [][]float64 `yaml:"drive_stages"`
	DriveInverted bool        `yaml:"drive_inverted"`
	SteerStages   [][]float64 `yaml:"steer_stages"`
	SteerInverted bool        `yaml:"steer_inverted"`
}

// LoadPresets parses the built-in mechanical preset catalog. Keys are the
// upper-case preset names, e.g. "MK4_L2".
func LoadPresets() (map[string]*types.MechanicalConfiguration, error) {
	return ParsePresets(presetCatalogYAML)
}

func ParsePresets(data []byte) (map[string]*types.MechanicalConfiguration, error) {
	var catalog presetCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse preset catalog: %w", err)
	}

	presets := make(map[string]*types.MechanicalConfiguration, len(catalog.Presets))
	for _, p := range catalog.Presets {
		name := strings.ToUpper(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, fmt.Errorf("preset without name")
		}
		if _, dup := presets[name]; dup {
			return nil, fmt.Errorf("duplicate preset %s", name)
		}
		if p.WheelDiameter <= 0 {
			return nil, fmt.Errorf("preset %s: wheel diameter must be positive", name)
		}

		drive, err := reduction(p.DriveStages)
		if err != nil {
			return nil, fmt.Errorf("preset %s drive: %w", name, err)
		}
		steer, err := reduction(p.SteerStages)
		if err != nil {
			return nil, fmt.Errorf("preset %s steer: %w", name, err)
		}

		presets[name] = &types.MechanicalConfiguration{
			Name:           name,
			WheelDiameter:  p.WheelDiameter,
			DriveReduction: drive,
			DriveInverted:  p.DriveInverted,
			SteerReduction: steer,
			SteerInverted:  p.SteerInverted,
		}
	}

	return presets, nil
}

func reduction(stages [][]float64) (float64, error) {
	if len(stages) == 0 {
		return 0, fmt.Errorf("no gear stages")
	}
	r := 1.0
	for i, s := range stages {
		if len(s) != 2 {
			return 0, fmt.Errorf("stage %d: want [driving, driven], got %v", i, s)
		}
		if s[0] <= 0 || s[1] <= 0 {
			return 0, fmt.Errorf("stage %d: tooth counts must be positive", i)
		}
		r *= s[0] / s[1]
	}
	return r, nil
}
