package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresets(t *testing.T) {
	presets, err := LoadPresets()
	require.NoError(t, err)
	require.Len(t, presets, 9)

	l2 := presets["MK4_L2"]
	require.NotNil(t, l2)
	assert.Equal(t, "MK4_L2", l2.Name)
	assert.InDelta(t, (14.0/50.0)*(27.0/17.0)*(15.0/45.0), l2.DriveReduction, 1e-12)
}

func TestParsePresets_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"bad yaml", "presets: [", "failed to parse preset catalog"},
		{"no name", "presets:\n  - wheel_diameter: 0.1\n", "preset without name"},
		{"duplicate", `
presets:
  - {name: a, wheel_diameter: 0.1, drive_stages: [[1, 2]], steer_stages: [[1, 2]]}
  - {name: A, wheel_diameter: 0.1, drive_stages: [[1, 2]], steer_stages: [[1, 2]]}
`, "duplicate preset A"},
		{"no stages", "presets:\n  - {name: a, wheel_diameter: 0.1, steer_stages: [[1, 2]]}\n", "no gear stages"},
		{"short stage", "presets:\n  - {name: a, wheel_diameter: 0.1, drive_stages: [[1]], steer_stages: [[1, 2]]}\n", "want [driving, driven]"},
		{"zero teeth", "presets:\n  - {name: a, wheel_diameter: 0.1, drive_stages: [[0, 2]], steer_stages: [[1, 2]]}\n", "tooth counts must be positive"},
		{"no wheel", "presets:\n  - {name: a, drive_stages: [[1, 2]], steer_stages: [[1, 2]]}\n", "wheel diameter must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
