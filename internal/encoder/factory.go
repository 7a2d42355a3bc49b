package encoder

import (
	"fmt"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// Factory creates AbsoluteEncoders for either configuration variant.
// A nil driver makes the matching variant unavailable.
type Factory struct {
	analog    AnalogDriver
	cancoders CANCoderDriver
	direction Direction
	logger    *zap.Logger
}

func NewFactory(analog AnalogDriver, cancoders CANCoderDriver, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		analog:    analog,
		cancoders: cancoders,
		direction: CounterClockwise,
		logger:    logger,
	}
}

// WithDirection returns a copy of the factory whose CAN sensors count
// direction as positive.
func (f *Factory) WithDirection(direction Direction) *Factory {
	c := *f
	c.direction = direction
	return &c
}

// Create builds and configures the encoder described by cfg.
func (f *Factory) Create(cfg types.AbsoluteEncoderConfiguration) (AbsoluteEncoder, error) {
	switch cfg.Variant {
	case types.EncoderVariantAnalog:
		if f.analog == nil {
			return nil, fmt.Errorf("no analog driver available for channel %d", cfg.ID)
		}
		enc, err := NewAnalogEncoder(f.analog, cfg, f.logger)
		if err != nil {
			return nil, err
		}
		return enc, nil

	case types.EncoderVariantCANBus:
		if f.cancoders == nil {
			return nil, fmt.Errorf("no CANCoder driver available for device %d", cfg.ID)
		}
		enc, err := NewCANCoderEncoder(f.cancoders, cfg, f.direction, f.logger)
		if err != nil {
			return nil, err
		}
		return enc, nil

	default:
		return nil, fmt.Errorf("encoder variant %q: %w", cfg.Variant, types.ErrUnrecognizedVariant)
	}
}
