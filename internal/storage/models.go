package storage

import (
	"time"

	"github.com/KevinKickass/OpenSwerveCore/internal/module"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/google/uuid"
)

// ModuleRecord is the persisted snapshot of a built module's configuration.
type ModuleRecord struct {
	ID         uuid.UUID                     `json:"id"`
	ModuleName string                        `json:"module_name"`
	Builder    string                        `json:"builder"`
	Mechanical types.MechanicalConfiguration `json:"mechanical"` // JSONB
	Steer      types.SteerConfiguration      `json:"steer"`      // JSONB
	DrivePort  int                           `json:"drive_port"`
	DriveBus   string                        `json:"drive_bus"`
	SteerBus   string                        `json:"steer_bus"`
	CreatedAt  time.Time                     `json:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// NewModuleRecord snapshots m under name.
func NewModuleRecord(name, builder string, m *module.SwerveModule) ModuleRecord {
	desc := m.Description()
	rec := ModuleRecord{
		ID:         m.ID(),
		ModuleName: name,
		Builder:    builder,
		Steer:      desc.Steer,
		DrivePort:  desc.DrivePort,
		DriveBus:   desc.DriveBus,
		SteerBus:   desc.SteerBus,
	}
	if desc.Mechanical != nil {
		rec.Mechanical = *desc.Mechanical
	}
	return rec
}

type Setpoint struct {
	ID           int64     `json:"id"`
	ModuleID     uuid.UUID `json:"module_id"`
	DriveVoltage float64   `json:"drive_voltage"`
	SteerAngle   float64   `json:"steer_angle"`
	CreatedAt    time.Time `json:"created_at"`
}
