package interfaces

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenSwerveCore/internal/config"
	"github.com/KevinKickass/OpenSwerveCore/internal/storage"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	// ErrNotRunning is returned for commands issued outside the RUNNING state.
	ErrNotRunning = errors.New("system not running")
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State            string `json:"state"`
	ModuleCount      int    `json:"module_count"`
	DashboardClients int    `json:"dashboard_clients"`
	StorageEnabled   bool   `json:"storage_enabled"`
}

// ModuleStatus is the live state of one swerve module.
type ModuleStatus struct {
	Name          string  `json:"name"`
	ID            string  `json:"id"`
	Builder       string  `json:"builder"`
	DriveMotor    string  `json:"drive_motor"`
	SteerMotor    string  `json:"steer_motor"`
	DriveVelocity float64 `json:"drive_velocity"`
	MaxVelocity   float64 `json:"max_velocity"`
	SteerAngle    float64 `json:"steer_angle"`
	TargetAngle   float64 `json:"target_angle"`
}

type LifecycleManager interface {
	Config() *config.Config
	Storage() *storage.PostgresClient
	GetCurrentStatus() SystemStatus
	Modules() []ModuleStatus
	// Module returns ErrModuleNotFound for an unknown name.
	Module(name string) (ModuleStatus, error)
	// SetModule commands one module and returns its state afterwards.
	SetModule(ctx context.Context, name string, driveVoltage, steerAngle float64) (ModuleStatus, error)
	Shutdown(ctx context.Context) error
}
