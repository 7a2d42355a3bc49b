package module

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/google/uuid"
)

// Factory binds a mechanical profile to a drive and a steer controller
// factory. It trusts its inputs; validation belongs to the builders.
type Factory struct {
	mech  *types.MechanicalConfiguration
	drive motor.DriveControllerFactory
	steer motor.SteerControllerFactory
}

func NewFactory(mech *types.MechanicalConfiguration, drive motor.DriveControllerFactory, steer motor.SteerControllerFactory) *Factory {
	return &Factory{
		mech:  mech,
		drive: drive,
		steer: steer,
	}
}

// Create opens the steer encoder and motor, then the drive motor, and wraps
// them into a module. container may be nil.
func (f *Factory) Create(drivePort int, driveBus string, steerCfg types.SteerConfiguration, steerBus string, container telemetry.Container) (*SwerveModule, error) {
	steer, err := f.steer.CreateSteer(steerCfg, steerBus, f.mech, container)
	if err != nil {
		return nil, fmt.Errorf("failed to create steer controller: %w", err)
	}

	drive, err := f.drive.CreateDrive(drivePort, driveBus, f.mech, container)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive controller: %w", err)
	}

	return &SwerveModule{
		id: uuid.New(),
		desc: Description{
			Mechanical: f.mech,
			DrivePort:  drivePort,
			DriveBus:   driveBus,
			SteerBus:   steerBus,
			Steer:      steerCfg,
			DriveMotor: f.drive.Info(),
			SteerMotor: f.steer.Info(),
		},
		drive: drive,
		steer: steer,
	}, nil
}
