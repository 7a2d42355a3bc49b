package module

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// GearRatio selects one of the MK4 mechanical presets for LegacyBuilder.
type GearRatio int

const (
	GearRatioL1 GearRatio = iota + 1
	GearRatioL2
	GearRatioL3
	GearRatioL4
)

func (g GearRatio) String() string {
	switch g {
	case GearRatioL1:
		return "L1"
	case GearRatioL2:
		return "L2"
	case GearRatioL3:
		return "L3"
	case GearRatioL4:
		return "L4"
	default:
		return fmt.Sprintf("GearRatio(%d)", int(g))
	}
}

// Configuration returns the MK4 preset for the ratio, or nil.
func (g GearRatio) Configuration() *types.MechanicalConfiguration {
	switch g {
	case GearRatioL1:
		return MK4L1
	case GearRatioL2:
		return MK4L2
	case GearRatioL3:
		return MK4L3
	case GearRatioL4:
		return MK4L4
	default:
		return nil
	}
}

// ParseGearRatio maps "L1".."L4" to a GearRatio.
func ParseGearRatio(s string) (GearRatio, error) {
	for _, g := range []GearRatio{GearRatioL1, GearRatioL2, GearRatioL3, GearRatioL4} {
		if g.String() == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("gear ratio %q: %w", s, types.ErrUnrecognizedVariant)
}

// LegacyBuilder is the MK4 builder kept for older robot code. It supports NEO
// and Falcon motors with fixed steer gains and CANCoder encoders only. The
// profile contributes voltage compensation and current limits.
type LegacyBuilder struct {
	hw       Hardware
	encoders *encoder.Factory
	logger   *zap.Logger

	configuration types.ModuleConfiguration

	container    telemetry.Container
	gearRatio    GearRatio
	driveFactory motor.DriveControllerFactory
	driveErr     error
	steerFactory motor.SteerControllerFactory
	steerErr     error

	driveMotorPort   int
	driveBus         string
	steerMotorPort   int
	steerBus         string
	steerMotorType   types.MotorType
	steerEncoderPort int
	steerEncoderBus  string
	steerOffset      float64
}

func NewLegacyBuilder(hw Hardware, logger *zap.Logger) LegacyBuilder {
	return NewLegacyBuilderWithConfiguration(hw, types.NewModuleConfiguration(), logger)
}

func NewLegacyBuilderWithConfiguration(hw Hardware, cfg types.ModuleConfiguration, logger *zap.Logger) LegacyBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return LegacyBuilder{
		hw:               hw,
		encoders:         hw.encoderFactory(logger),
		logger:           logger,
		configuration:    cfg,
		driveMotorPort:   -1,
		steerMotorPort:   -1,
		steerEncoderPort: -1,
	}
}

func (b LegacyBuilder) WithLayout(container telemetry.Container) LegacyBuilder {
	b.container = container
	return b
}

func (b LegacyBuilder) WithGearRatio(ratio GearRatio) LegacyBuilder {
	b.gearRatio = ratio
	return b
}

func (b LegacyBuilder) WithDriveMotor(motorType types.MotorType, port int, bus string) LegacyBuilder {
	driver, err := b.hw.motorDriver(motorType)
	if err != nil {
		b.driveFactory = nil
		b.driveErr = err
		b.logger.Warn("Drive motor unavailable", zap.Stringer("motor_type", motorType), zap.Error(err))
	} else {
		var fb *motor.DriveFactoryBuilder
		if motorType == types.MotorTypeFalcon {
			fb = motor.NewFalconDriveFactoryBuilder(driver, b.logger)
		} else {
			fb = motor.NewNeoDriveFactoryBuilder(driver, b.logger)
		}
		b.driveFactory = fb.
			WithVoltageCompensation(b.configuration.NominalVoltage).
			WithCurrentLimit(b.configuration.DriveCurrentLimit).
			Build()
		b.driveErr = nil
	}
	b.driveMotorPort = port
	b.driveBus = bus
	return b
}

func (b LegacyBuilder) WithSteerMotor(motorType types.MotorType, port int, bus string) LegacyBuilder {
	driver, err := b.hw.motorDriver(motorType)
	if err != nil {
		b.steerFactory = nil
		b.steerErr = err
		b.logger.Warn("Steer motor unavailable", zap.Stringer("motor_type", motorType), zap.Error(err))
	} else {
		// steer gains are fixed per family, whatever the profile says
		defaults, _ := types.DefaultSteerProfile(motorType)
		gains := defaults.Steer
		var fb *motor.SteerFactoryBuilder
		if motorType == types.MotorTypeFalcon {
			fb = motor.NewFalconSteerFactoryBuilder(driver, b.logger)
		} else {
			fb = motor.NewNeoSteerFactoryBuilder(driver, b.logger)
		}
		b.steerFactory = fb.
			WithVoltageCompensation(b.configuration.NominalVoltage).
			WithPIDConstants(gains.P, gains.I, gains.D).
			WithCurrentLimit(b.configuration.SteerCurrentLimit).
			Build(b.encoders)
		b.steerErr = nil
	}
	b.steerMotorType = motorType
	b.steerMotorPort = port
	b.steerBus = bus
	return b
}

// WithSteerEncoderPort sets the CANCoder device id and its bus.
func (b LegacyBuilder) WithSteerEncoderPort(deviceID int, bus string) LegacyBuilder {
	b.steerEncoderPort = deviceID
	b.steerEncoderBus = bus
	return b
}

func (b LegacyBuilder) WithSteerOffset(offset float64) LegacyBuilder {
	b.steerOffset = offset
	return b
}

func (b LegacyBuilder) Build() (*SwerveModule, error) {
	mech := b.gearRatio.Configuration()
	if mech == nil {
		return nil, &types.ConfigurationIncompleteError{Field: "Gear Ratio"}
	}
	if err := checkRequired(b.driveFactory, b.driveErr, b.steerFactory, b.steerErr,
		b.driveMotorPort, b.steerMotorPort, b.steerEncoderPort); err != nil {
		return nil, err
	}

	encoderConfig := types.NewCANCoderConfiguration(b.steerEncoderPort, b.steerOffset, b.steerEncoderBus)
	if err := encoderConfig.Validate(); err != nil {
		return nil, err
	}

	steerConfig := types.SteerConfiguration{
		MotorPort: b.steerMotorPort,
		Encoder:   encoderConfig,
	}

	b.logger.Debug("Building legacy swerve module",
		zap.Stringer("gear_ratio", b.gearRatio),
		zap.Int("drive_port", b.driveMotorPort),
		zap.Stringer("steer_motor", b.steerMotorType),
		zap.Stringer("steer", steerConfig))

	return NewFactory(mech, b.driveFactory, b.steerFactory).
		Create(b.driveMotorPort, b.driveBus, steerConfig, b.steerBus, b.container)
}
