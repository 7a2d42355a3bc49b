package types

import (
	"fmt"
	"math"
)

// EncoderVariant tags which sensor family an AbsoluteEncoderConfiguration describes.
type EncoderVariant string

const (
	EncoderVariantAnalog EncoderVariant = "analog"
	EncoderVariantCANBus EncoderVariant = "can_bus"
)

// SensorInitializationStrategy decides what a CAN sensor reports before its
// first real measurement.
type SensorInitializationStrategy string

const (
	BootToAbsolutePosition SensorInitializationStrategy = "boot_to_absolute_position"
	BootToZero             SensorInitializationStrategy = "boot_to_zero"
)

const (
	DefaultStatusFramePeriodMs = 100
	DefaultReadAttempts        = 3
)

// AbsoluteEncoderConfiguration parameterizes an absolute encoder without
// touching hardware. ID is the analog channel or the CAN device id depending
// on Variant. The struct is comparable so it can be used as a map key.
type AbsoluteEncoderConfiguration struct {
	Variant           EncoderVariant               `json:"variant"`
	ID                int                          `json:"id"`
	Offset            float64                      `json:"offset"` // radians
	Bus               string                       `json:"bus,omitempty"`
	InitStrategy      SensorInitializationStrategy `json:"init_strategy,omitempty"`
	StatusFramePeriod int                          `json:"status_frame_period_ms,omitempty"`
	ReadAttempts      int                          `json:"read_attempts,omitempty"`
}

// NewAnalogEncoderConfiguration describes an encoder on an analog input channel.
func NewAnalogEncoderConfiguration(channel int, offset float64) AbsoluteEncoderConfiguration {
	return AbsoluteEncoderConfiguration{
		Variant: EncoderVariantAnalog,
		ID:      channel,
		Offset:  offset,
	}
}

// NewCANCoderConfiguration describes a CANCoder booting to its absolute position.
// An empty bus selects the controller's native bus.
func NewCANCoderConfiguration(id int, offset float64, bus string) AbsoluteEncoderConfiguration {
	return NewCANCoderConfigurationWithStrategy(id, offset, bus, BootToAbsolutePosition)
}

func NewCANCoderConfigurationWithStrategy(id int, offset float64, bus string, strategy SensorInitializationStrategy) AbsoluteEncoderConfiguration {
	return AbsoluteEncoderConfiguration{
		Variant:           EncoderVariantCANBus,
		ID:                id,
		Offset:            offset,
		Bus:               bus,
		InitStrategy:      strategy,
		StatusFramePeriod: DefaultStatusFramePeriodMs,
		ReadAttempts:      DefaultReadAttempts,
	}
}

// Validate checks the invariants shared by all variants.
func (c AbsoluteEncoderConfiguration) Validate() error {
	if c.ID < 0 {
		return &InvalidConfigurationError{Op: "encoder id", Detail: fmt.Sprintf("must be >= 0, got %d", c.ID)}
	}
	if !(c.Offset > -2*math.Pi && c.Offset < 2*math.Pi) {
		return &InvalidConfigurationError{Op: "encoder offset", Detail: fmt.Sprintf("must be within (-2π, 2π), got %f", c.Offset)}
	}
	switch c.Variant {
	case EncoderVariantAnalog, EncoderVariantCANBus:
		return nil
	default:
		return fmt.Errorf("encoder variant %q: %w", c.Variant, ErrUnrecognizedVariant)
	}
}

func (c AbsoluteEncoderConfiguration) String() string {
	if c.Variant == EncoderVariantAnalog {
		return fmt.Sprintf("AnalogEncoder{channel=%d, offset=%.4f}", c.ID, c.Offset)
	}
	return fmt.Sprintf("CANCoder{id=%d, offset=%.4f, bus=%q, init=%s, period=%dms, attempts=%d}",
		c.ID, c.Offset, c.Bus, c.InitStrategy, c.StatusFramePeriod, c.ReadAttempts)
}

// SteerConfiguration pairs the steer motor port with its absolute encoder.
// Equality is structural.
type SteerConfiguration struct {
	MotorPort int                          `json:"motor_port"`
	Encoder   AbsoluteEncoderConfiguration `json:"encoder"`
}

func (s SteerConfiguration) String() string {
	return fmt.Sprintf("SteerConfiguration{motorPort=%d, encoder=%s}", s.MotorPort, s.Encoder)
}
