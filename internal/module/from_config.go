package module

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/config"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// BuildFromConfig runs the builder named by mc.Builder with the values from
// the config file. profile is applied only when custom is true; otherwise the
// builders use their defaults.
func BuildFromConfig(hw Hardware, mc config.ModuleConfig, profile types.ModuleConfiguration, custom bool, container telemetry.Container, logger *zap.Logger) (*SwerveModule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("module", mc.Name))

	driveType, err := types.ParseMotorType(mc.Drive.Type)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", mc.Name, err)
	}
	steerType, err := types.ParseMotorType(mc.Steer.Type)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", mc.Name, err)
	}
	encoderType, err := types.ParseEncoderType(mc.Encoder.Type)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", mc.Name, err)
	}

	var m *SwerveModule
	switch mc.Builder {
	case config.BuilderLegacy:
		if encoderType != types.EncoderTypeCANCoder {
			return nil, fmt.Errorf("module %s: legacy builder supports CANCoder encoders only: %w", mc.Name, types.ErrInvalidConfiguration)
		}
		ratio, err := ParseGearRatio(mc.GearRatio)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mc.Name, err)
		}
		b := NewLegacyBuilder(hw, logger)
		if custom {
			b = NewLegacyBuilderWithConfiguration(hw, profile, logger)
		}
		m, err = b.WithLayout(container).
			WithGearRatio(ratio).
			WithDriveMotor(driveType, mc.Drive.Port, mc.Drive.Bus).
			WithSteerMotor(steerType, mc.Steer.Port, mc.Steer.Bus).
			WithSteerEncoderPort(mc.Encoder.Port, mc.Encoder.Bus).
			WithSteerOffset(mc.Encoder.Offset).
			Build()
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mc.Name, err)
		}

	case config.BuilderCurrent, "":
		mech, err := Preset(mc.GearRatio)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mc.Name, err)
		}
		b := NewBuilder(hw, logger)
		if custom {
			b = NewBuilderWithConfiguration(hw, profile, logger)
		}
		b = b.WithLayout(container).
			WithGearRatio(mech).
			WithDriveMotor(driveType, mc.Drive.Port, mc.Drive.Bus).
			WithSteerMotor(steerType, mc.Steer.Port, mc.Steer.Bus).
			WithSteerOffset(mc.Encoder.Offset)
		if encoderType == types.EncoderTypeAnalog {
			b = b.WithSteerEncoderAnalogChannel(mc.Encoder.Port)
		} else {
			b = b.WithSteerEncoderPort(mc.Encoder.Port, mc.Encoder.Bus)
		}
		m, err = b.Build()
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mc.Name, err)
		}

	default:
		return nil, fmt.Errorf("module %s: builder %q: %w", mc.Name, mc.Builder, types.ErrUnrecognizedVariant)
	}

	logger.Info("Swerve module ready",
		zap.String("id", m.ID().String()),
		zap.Float64("max_velocity", m.MaxVelocity()))
	return m, nil
}
