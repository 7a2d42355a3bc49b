package module

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KevinKickass/OpenSwerveCore/internal/config"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
)

var presets = mustLoadPresets()

// Shared mechanical profiles for Swerve Drive Specialties modules.
var (
	MK3Standard = presets["MK3_STANDARD"]
	MK3Fast     = presets["MK3_FAST"]
	MK4L1       = presets["MK4_L1"]
	MK4L2       = presets["MK4_L2"]
	MK4L3       = presets["MK4_L3"]
	MK4L4       = presets["MK4_L4"]
	MK4iL1      = presets["MK4I_L1"]
	MK4iL2      = presets["MK4I_L2"]
	MK4iL3      = presets["MK4I_L3"]
)

func mustLoadPresets() map[string]*types.MechanicalConfiguration {
	p, err := config.LoadPresets()
	if err != nil {
		panic(fmt.Sprintf("module: built-in preset catalog: %v", err))
	}
	return p
}

// Preset looks up a mechanical profile by name, ignoring case.
func Preset(name string) (*types.MechanicalConfiguration, error) {
	p, ok := presets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("mechanical preset %q: %w", name, types.ErrUnrecognizedVariant)
	}
	return p, nil
}

// PresetNames lists the known preset names in order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
