// Package motor turns vendor actuator drivers into drive and steer
// controllers scaled by a module's mechanical profile.
package motor

import (
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
)

// Settings are applied by a Driver when a motor is opened.
type Settings struct {
	Port                int
	Bus                 string
	VoltageCompensation float64 // 0 disables compensation
	CurrentLimit        float64 // 0 disables the limit
	Inverted            bool
	Brake               bool
	Gains               *types.PIDGains // closed-loop position gains, nil for open loop
}

// Motor is a live actuator handle. Positions and velocities are in the
// driver's native sensor units.
type Motor interface {
	SetVoltage(volts float64) error
	SetPositionReference(position float64) error
	SensorPosition() float64
	SensorVelocity() float64
	SetSensorPosition(position float64) error
}

// Driver opens motors of one vendor family.
type Driver interface {
	OpenMotor(settings Settings) (Motor, error)
}

// DriveController drives the wheel.
type DriveController interface {
	SetReferenceVoltage(voltage float64) error
	// StateVelocity returns the wheel surface speed in m/s.
	StateVelocity() float64
}

// SteerController points the wheel.
type SteerController interface {
	// ReferenceAngle is the last requested angle in radians.
	ReferenceAngle() float64
	SetReferenceAngle(angle float64) error
	// StateAngle is the measured angle in radians in [0, 2π).
	StateAngle() float64
}

// FactoryInfo describes the settings a controller factory binds to every
// motor it opens.
type FactoryInfo struct {
	MotorType           types.MotorType
	VoltageCompensation float64
	CurrentLimit        float64
	Gains               *types.PIDGains
}
