// Package module assembles drive and steer controllers into swerve modules
// and provides the validating builders used to describe them.
package module

import (
	"fmt"
	"math"

	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/google/uuid"
)

// Description is the resolved configuration a module was created from.
type Description struct {
	Mechanical *types.MechanicalConfiguration
	DrivePort  int
	DriveBus   string
	SteerBus   string
	Steer      types.SteerConfiguration
	DriveMotor motor.FactoryInfo
	SteerMotor motor.FactoryInfo
}

// SwerveModule is one steerable drive unit.
type SwerveModule struct {
	id    uuid.UUID
	desc  Description
	drive motor.DriveController
	steer motor.SteerController
}

func (m *SwerveModule) ID() uuid.UUID {
	return m.id
}

func (m *SwerveModule) Description() Description {
	return m.desc
}

func (m *SwerveModule) SteerConfiguration() types.SteerConfiguration {
	return m.desc.Steer
}

func (m *SwerveModule) Mechanical() *types.MechanicalConfiguration {
	return m.desc.Mechanical
}

// MaxVelocity is the wheel surface speed in m/s at drive motor free speed.
func (m *SwerveModule) MaxVelocity() float64 {
	return m.desc.Mechanical.MaxFreeSpeed(m.desc.DriveMotor.MotorType)
}

// DriveVelocity returns the wheel surface speed in m/s.
func (m *SwerveModule) DriveVelocity() float64 {
	return m.drive.StateVelocity()
}

// SteerAngle returns the measured wheel angle in radians in [0, 2π).
func (m *SwerveModule) SteerAngle() float64 {
	return m.steer.StateAngle()
}

// TargetAngle returns the last commanded steer angle in radians.
func (m *SwerveModule) TargetAngle() float64 {
	return m.steer.ReferenceAngle()
}

func (m *SwerveModule) DriveController() motor.DriveController {
	return m.drive
}

func (m *SwerveModule) SteerController() motor.SteerController {
	return m.steer
}

// Set commands a drive voltage and a steer angle. When the target is more
// than a quarter turn away the wheel is pointed the opposite way and the
// voltage inverted.
func (m *SwerveModule) Set(driveVoltage, steerAngle float64) error {
	steerAngle = math.Mod(steerAngle, 2*math.Pi)
	if steerAngle < 0 {
		steerAngle += 2 * math.Pi
	}

	difference := steerAngle - m.SteerAngle()
	if difference >= math.Pi {
		steerAngle -= 2 * math.Pi
	} else if difference < -math.Pi {
		steerAngle += 2 * math.Pi
	}
	difference = steerAngle - m.SteerAngle()

	if difference > math.Pi/2 || difference < -math.Pi/2 {
		steerAngle += math.Pi
		driveVoltage *= -1
	}

	steerAngle = math.Mod(steerAngle, 2*math.Pi)
	if steerAngle < 0 {
		steerAngle += 2 * math.Pi
	}

	if err := m.drive.SetReferenceVoltage(driveVoltage); err != nil {
		return fmt.Errorf("failed to set drive voltage: %w", err)
	}
	if err := m.steer.SetReferenceAngle(steerAngle); err != nil {
		return fmt.Errorf("failed to set steer angle: %w", err)
	}
	return nil
}
