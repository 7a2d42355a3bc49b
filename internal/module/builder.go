package module

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// Builder describes one module and validates the description in Build.
// Every With method returns an updated copy; the receiver is left untouched.
//
// Only NEO motors are supported. Any other motor type clears the matching
// factory, so Build reports it as missing even after an earlier valid call.
type Builder struct {
	hw       Hardware
	encoders *encoder.Factory
	logger   *zap.Logger

	configuration                types.ModuleConfiguration
	useDefaultSteerConfiguration bool

	container    telemetry.Container
	mechConfig   *types.MechanicalConfiguration
	driveFactory motor.DriveControllerFactory
	driveErr     error
	steerFactory motor.SteerControllerFactory
	steerErr     error

	driveMotorPort   int
	driveBus         string
	steerMotorPort   int
	steerBus         string
	steerMotorType   types.MotorType
	steerEncoderType types.EncoderType
	steerEncoderPort int
	steerEncoderBus  string
	steerOffset      float64
}

// NewBuilder returns a builder that applies the default steer gains of
// whichever motor family is chosen.
func NewBuilder(hw Hardware, logger *zap.Logger) Builder {
	b := newBuilder(hw, types.NewModuleConfiguration(), logger)
	b.useDefaultSteerConfiguration = true
	return b
}

// NewBuilderWithConfiguration returns a builder that applies cfg to every
// motor it resolves.
func NewBuilderWithConfiguration(hw Hardware, cfg types.ModuleConfiguration, logger *zap.Logger) Builder {
	return newBuilder(hw, cfg, logger)
}

func newBuilder(hw Hardware, cfg types.ModuleConfiguration, logger *zap.Logger) Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Builder{
		hw:               hw,
		encoders:         hw.encoderFactory(logger),
		logger:           logger,
		configuration:    cfg,
		driveMotorPort:   -1,
		steerMotorPort:   -1,
		steerEncoderType: types.EncoderTypeCANCoder,
		steerEncoderPort: -1,
	}
}

// WithLayout sets the telemetry container the module registers its values in.
func (b Builder) WithLayout(container telemetry.Container) Builder {
	b.container = container
	return b
}

// WithGearRatio sets the mechanical profile, typically one of the presets.
func (b Builder) WithGearRatio(mech *types.MechanicalConfiguration) Builder {
	b.mechConfig = mech
	return b
}

// WithDriveMotor selects the drive motor. An empty bus is the native bus.
func (b Builder) WithDriveMotor(motorType types.MotorType, port int, bus string) Builder {
	switch motorType {
	case types.MotorTypeNEO:
		driver, err := b.hw.motorDriver(motorType)
		if err != nil {
			b.driveFactory = nil
			b.driveErr = err
			b.logger.Warn("Drive motor unavailable", zap.Stringer("motor_type", motorType), zap.Error(err))
			break
		}
		b.driveFactory = motor.NewNeoDriveFactoryBuilder(driver, b.logger).
			WithVoltageCompensation(b.configuration.NominalVoltage).
			WithCurrentLimit(b.configuration.DriveCurrentLimit).
			Build()
		b.driveErr = nil
	default:
		b.driveFactory = nil
		b.driveErr = fmt.Errorf("drive motor %s: %w", motorType, types.ErrUnrecognizedVariant)
		b.logger.Warn("Unsupported drive motor type", zap.Stringer("motor_type", motorType))
	}
	b.driveMotorPort = port
	b.driveBus = bus
	return b
}

// WithSteerMotor selects the steer motor. An empty bus is the native bus.
func (b Builder) WithSteerMotor(motorType types.MotorType, port int, bus string) Builder {
	switch motorType {
	case types.MotorTypeNEO:
		driver, err := b.hw.motorDriver(motorType)
		if err != nil {
			b.steerFactory = nil
			b.steerErr = err
			b.logger.Warn("Steer motor unavailable", zap.Stringer("motor_type", motorType), zap.Error(err))
			break
		}
		profile := b.configuration
		if b.useDefaultSteerConfiguration {
			profile, _ = types.DefaultSteerProfile(motorType)
		}
		b.steerFactory = motor.NewNeoSteerFactoryBuilder(driver, b.logger).
			WithVoltageCompensation(profile.NominalVoltage).
			WithPIDConstants(profile.Steer.P, profile.Steer.I, profile.Steer.D).
			WithCurrentLimit(profile.SteerCurrentLimit).
			Build(b.encoders)
		b.steerErr = nil
	default:
		b.steerFactory = nil
		b.steerErr = fmt.Errorf("steer motor %s: %w", motorType, types.ErrUnrecognizedVariant)
		b.logger.Warn("Unsupported steer motor type", zap.Stringer("motor_type", motorType))
	}
	b.steerMotorType = motorType
	b.steerMotorPort = port
	b.steerBus = bus
	return b
}

// WithSteerEncoderPort reads the steer angle from a CANCoder with the given
// device id.
func (b Builder) WithSteerEncoderPort(deviceID int, bus string) Builder {
	b.steerEncoderType = types.EncoderTypeCANCoder
	b.steerEncoderPort = deviceID
	b.steerEncoderBus = bus
	return b
}

// WithSteerEncoderAnalogChannel reads the steer angle from an analog input.
func (b Builder) WithSteerEncoderAnalogChannel(channel int) Builder {
	b.steerEncoderType = types.EncoderTypeAnalog
	b.steerEncoderPort = channel
	b.steerEncoderBus = ""
	return b
}

// WithSteerOffset sets the encoder offset in radians.
func (b Builder) WithSteerOffset(offset float64) Builder {
	b.steerOffset = offset
	return b
}

// Build validates the description and opens the hardware. Nothing is opened
// unless every check passes.
func (b Builder) Build() (*SwerveModule, error) {
	if b.mechConfig == nil {
		return nil, &types.ConfigurationIncompleteError{Field: "Mechanical Config"}
	}
	if err := checkRequired(b.driveFactory, b.driveErr, b.steerFactory, b.steerErr,
		b.driveMotorPort, b.steerMotorPort, b.steerEncoderPort); err != nil {
		return nil, err
	}

	var encoderConfig types.AbsoluteEncoderConfiguration
	switch b.steerEncoderType {
	case types.EncoderTypeAnalog:
		encoderConfig = types.NewAnalogEncoderConfiguration(b.steerEncoderPort, b.steerOffset)
	case types.EncoderTypeCANCoder:
		encoderConfig = types.NewCANCoderConfiguration(b.steerEncoderPort, b.steerOffset, b.steerEncoderBus)
	default:
		return nil, &types.ConfigurationIncompleteError{
			Field: "Steer Encoder Type",
			Cause: fmt.Errorf("encoder type %s: %w", b.steerEncoderType, types.ErrUnrecognizedVariant),
		}
	}
	if err := encoderConfig.Validate(); err != nil {
		return nil, err
	}

	steerConfig := types.SteerConfiguration{
		MotorPort: b.steerMotorPort,
		Encoder:   encoderConfig,
	}

	b.logger.Debug("Building swerve module",
		zap.String("mechanical", b.mechConfig.Name),
		zap.Int("drive_port", b.driveMotorPort),
		zap.Stringer("steer_motor", b.steerMotorType),
		zap.Stringer("steer", steerConfig))

	return NewFactory(b.mechConfig, b.driveFactory, b.steerFactory).
		Create(b.driveMotorPort, b.driveBus, steerConfig, b.steerBus, b.container)
}

// checkRequired runs the required-field checks shared by both builders, in
// the order they are reported.
func checkRequired(
	drive motor.DriveControllerFactory, driveErr error,
	steer motor.SteerControllerFactory, steerErr error,
	drivePort, steerPort, encoderPort int,
) error {
	switch {
	case drive == nil:
		return &types.ConfigurationIncompleteError{Field: "Drive Motor", Cause: driveErr}
	case steer == nil:
		return &types.ConfigurationIncompleteError{Field: "Steer Motor", Cause: steerErr}
	case drivePort < 0:
		return &types.ConfigurationIncompleteError{Field: "Drive Motor Port"}
	case steerPort < 0:
		return &types.ConfigurationIncompleteError{Field: "Steer Motor Port"}
	case encoderPort < 0:
		return &types.ConfigurationIncompleteError{Field: "Steer Encoder Port"}
	}
	return nil
}
