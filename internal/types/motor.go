package types

import (
	"fmt"
	"strings"
)

// MotorType selects which actuator family a port/bus pair resolves to.
type MotorType int

const (
	MotorTypeNEO MotorType = iota
	MotorTypeFalcon
)

func (m MotorType) String() string {
	switch m {
	case MotorTypeNEO:
		return "NEO"
	case MotorTypeFalcon:
		return "FALCON"
	default:
		return fmt.Sprintf("MotorType(%d)", int(m))
	}
}

// FreeSpeedRPM is the unloaded motor speed used for the module's max velocity.
func (m MotorType) FreeSpeedRPM() float64 {
	switch m {
	case MotorTypeNEO:
		return 5676.0
	case MotorTypeFalcon:
		return 6380.0
	default:
		return 0
	}
}

// ParseMotorType maps config text ("neo", "falcon") to a MotorType.
func ParseMotorType(s string) (MotorType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEO":
		return MotorTypeNEO, nil
	case "FALCON", "FALCON500":
		return MotorTypeFalcon, nil
	default:
		return 0, fmt.Errorf("motor type %q: %w", s, ErrUnrecognizedVariant)
	}
}

// EncoderType selects which AbsoluteEncoderConfiguration variant is built.
type EncoderType int

const (
	EncoderTypeCANCoder EncoderType = iota
	EncoderTypeAnalog
)

func (e EncoderType) String() string {
	switch e {
	case EncoderTypeCANCoder:
		return "CANCoder"
	case EncoderTypeAnalog:
		return "Analog"
	default:
		return fmt.Sprintf("EncoderType(%d)", int(e))
	}
}

// ParseEncoderType maps config text ("cancoder", "analog") to an EncoderType.
func ParseEncoderType(s string) (EncoderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cancoder", "can":
		return EncoderTypeCANCoder, nil
	case "analog":
		return EncoderTypeAnalog, nil
	default:
		return 0, fmt.Errorf("encoder type %q: %w", s, ErrUnrecognizedVariant)
	}
}
