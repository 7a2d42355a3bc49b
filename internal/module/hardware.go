package module

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// Hardware bundles the vendor drivers a builder may open devices through.
// A nil driver makes the matching motor family or encoder variant
// unavailable.
type Hardware struct {
	NEO       motor.Driver
	Falcon    motor.Driver
	Analog    encoder.AnalogDriver
	CANCoders encoder.CANCoderDriver
	// EncoderDirection is the positive direction of CAN encoders,
	// counter-clockwise when unset.
	EncoderDirection encoder.Direction
}

func (h Hardware) encoderFactory(logger *zap.Logger) *encoder.Factory {
	return encoder.NewFactory(h.Analog, h.CANCoders, logger).WithDirection(h.EncoderDirection)
}

func (h Hardware) motorDriver(motorType types.MotorType) (motor.Driver, error) {
	var d motor.Driver
	switch motorType {
	case types.MotorTypeNEO:
		d = h.NEO
	case types.MotorTypeFalcon:
		d = h.Falcon
	default:
		return nil, fmt.Errorf("motor type %s: %w", motorType, types.ErrUnrecognizedVariant)
	}
	if d == nil {
		return nil, fmt.Errorf("no %s driver available", motorType)
	}
	return d, nil
}
