package motor

import (
	"fmt"
	"math"

	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// DriveControllerFactory opens drive motors bound to a mechanical profile.
type DriveControllerFactory interface {
	CreateDrive(port int, bus string, mech *types.MechanicalConfiguration, container telemetry.Container) (DriveController, error)
	Info() FactoryInfo
}

// DriveFactoryBuilder collects the electrical settings shared by every drive
// motor a factory opens.
type DriveFactoryBuilder struct {
	driver              Driver
	fam                 family
	voltageCompensation float64
	currentLimit        float64
	logger              *zap.Logger
}

func NewNeoDriveFactoryBuilder(driver Driver, logger *zap.Logger) *DriveFactoryBuilder {
	return newDriveFactoryBuilder(driver, neoFamily, logger)
}

func NewFalconDriveFactoryBuilder(driver Driver, logger *zap.Logger) *DriveFactoryBuilder {
	return newDriveFactoryBuilder(driver, falconFamily, logger)
}

func newDriveFactoryBuilder(driver Driver, fam family, logger *zap.Logger) *DriveFactoryBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriveFactoryBuilder{
		driver: driver,
		fam:    fam,
		logger: logger,
	}
}

func (b *DriveFactoryBuilder) WithVoltageCompensation(nominalVoltage float64) *DriveFactoryBuilder {
	b.voltageCompensation = nominalVoltage
	return b
}

func (b *DriveFactoryBuilder) WithCurrentLimit(currentLimit float64) *DriveFactoryBuilder {
	b.currentLimit = currentLimit
	return b
}

func (b *DriveFactoryBuilder) Build() DriveControllerFactory {
	return &driveFactory{
		driver:              b.driver,
		fam:                 b.fam,
		voltageCompensation: b.voltageCompensation,
		currentLimit:        b.currentLimit,
		logger:              b.logger,
	}
}

type driveFactory struct {
	driver              Driver
	fam                 family
	voltageCompensation float64
	currentLimit        float64
	logger              *zap.Logger
}

func (f *driveFactory) Info() FactoryInfo {
	return FactoryInfo{
		MotorType:           f.fam.motorType,
		VoltageCompensation: f.voltageCompensation,
		CurrentLimit:        f.currentLimit,
	}
}

func (f *driveFactory) CreateDrive(port int, bus string, mech *types.MechanicalConfiguration, container telemetry.Container) (DriveController, error) {
	m, err := f.driver.OpenMotor(Settings{
		Port:                port,
		Bus:                 bus,
		VoltageCompensation: f.voltageCompensation,
		CurrentLimit:        f.currentLimit,
		Inverted:            mech.DriveInverted,
		Brake:               true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s drive motor %d: %w", f.fam.motorType, port, err)
	}

	c := &driveController{
		motor: m,
		// native velocity -> m/s at the wheel
		velocityScale: f.fam.velocityToRPS * mech.DriveReduction * mech.WheelDiameter * math.Pi,
	}

	telemetry.AddNumber(container, "Current Velocity", c.StateVelocity)

	f.logger.Info("Drive motor created",
		zap.Stringer("motor_type", f.fam.motorType),
		zap.Int("port", port),
		zap.String("bus", bus))

	return c, nil
}

type driveController struct {
	motor         Motor
	velocityScale float64
}

func (c *driveController) SetReferenceVoltage(voltage float64) error {
	return c.motor.SetVoltage(voltage)
}

func (c *driveController) StateVelocity() float64 {
	return c.motor.SensorVelocity() * c.velocityScale
}
