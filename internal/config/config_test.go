package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
profile:
  nominal_voltage: 11.5
  drive_current_limit: 60
  steer_current_limit: 25
  steer:
    p: 0.8
    i: 0
    d: 0.05

modules:
  - name: front_left
    gear_ratio: MK4I_L2
    drive: { type: neo, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, port: 3, offset: 0.42 }
  - name: back_right
    builder: legacy
    gear_ratio: L3
    drive: { type: falcon, port: 7, bus: canivore }
    steer: { type: falcon, port: 8, bus: canivore }
    encoder: { type: cancoder, port: 9, bus: canivore, offset: -1.1 }

dashboard:
  http_port: 8081
  sample_interval: 50ms
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swerve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 11.5, cfg.Profile.NominalVoltage)
	assert.Equal(t, 60.0, cfg.Profile.DriveCurrentLimit)
	assert.Equal(t, 0.8, cfg.Profile.Steer.P)
	assert.True(t, cfg.CustomProfile)

	require.Len(t, cfg.Modules, 2)
	fl := cfg.Modules[0]
	assert.Equal(t, "front_left", fl.Name)
	assert.Equal(t, BuilderCurrent, fl.Builder)
	assert.Equal(t, "MK4I_L2", fl.GearRatio)
	assert.Equal(t, MotorConfig{Type: "neo", Port: 1}, fl.Drive)
	assert.Equal(t, EncoderConfig{Type: "cancoder", Port: 3, Offset: 0.42}, fl.Encoder)

	br := cfg.Modules[1]
	assert.Equal(t, BuilderLegacy, br.Builder)
	assert.Equal(t, "canivore", br.Steer.Bus)

	assert.Equal(t, 8081, cfg.Dashboard.HTTPPort)
	assert.Equal(t, 50051, cfg.Dashboard.GRPCPort)
	assert.Equal(t, 50*time.Millisecond, cfg.Dashboard.SampleInterval)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  development: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 12.0, cfg.Profile.NominalVoltage)
	assert.Equal(t, 80.0, cfg.Profile.DriveCurrentLimit)
	assert.Equal(t, 20.0, cfg.Profile.SteerCurrentLimit)
	assert.False(t, cfg.CustomProfile)
	assert.Empty(t, cfg.Modules)
	assert.Equal(t, 8080, cfg.Dashboard.HTTPPort)
	assert.Equal(t, 20*time.Millisecond, cfg.Dashboard.SampleInterval)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SWERVE_DASHBOARD_HTTP_PORT", "9090")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Dashboard.HTTPPort)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown builder", `
modules:
  - name: fl
    builder: v3
    gear_ratio: MK4_L1
    drive: { type: neo, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, port: 3 }
`},
		{"unknown motor", `
modules:
  - name: fl
    gear_ratio: MK4_L1
    drive: { type: kraken, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, port: 3 }
`},
		{"offset out of range", `
modules:
  - name: fl
    gear_ratio: MK4_L1
    drive: { type: neo, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: analog, port: 0, offset: 7 }
`},
		{"missing name", `
modules:
  - gear_ratio: MK4_L1
    drive: { type: neo, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, port: 3 }
`},
		{"missing drive port", `
modules:
  - name: fl
    gear_ratio: MK4_L1
    drive: { type: neo }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, port: 3 }
`},
		{"missing steer port", `
modules:
  - name: fl
    gear_ratio: MK4_L1
    drive: { type: neo, port: 1 }
    steer: { type: neo }
    encoder: { type: cancoder, port: 3 }
`},
		{"missing encoder port", `
modules:
  - name: fl
    gear_ratio: MK4_L1
    drive: { type: neo, port: 1 }
    steer: { type: neo, port: 2 }
    encoder: { type: cancoder, offset: 0.1 }
`},
		{"port out of range", "dashboard:\n  http_port: 70000\n"},
		{"bad log level", "log:\n  level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Database: "swerve", User: "robot", Password: "secret"}
	assert.Equal(t, "postgres://robot:secret@db:5432/swerve?sslmode=disable", db.DSN())
}
