package encoder

import (
	"fmt"
	"math"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

// FractionalOffset reduces an offset to its fractional part in [0, 1).
func FractionalOffset(offset float64) float64 {
	return offset - math.Floor(offset)
}

// NormalizeFraction turns a raw fractional position and offset into radians
// in [0, 2π) with zero at the offset.
func NormalizeFraction(position, offset float64) float64 {
	relative := position - offset
	if relative < 0 {
		relative += 1
	}
	// raw readings of exactly 1.0 would otherwise map to 2π
	if relative >= 1 {
		relative -= 1
	}
	return relative * 2 * math.Pi
}

// AnalogEncoder reads an analog absolute encoder.
type AnalogEncoder struct {
	input AnalogInput
}

// NewAnalogEncoder opens the configured channel and applies the offset so the
// forward-facing wheel reads as zero.
func NewAnalogEncoder(driver AnalogDriver, cfg types.AbsoluteEncoderConfiguration, logger *zap.Logger) (*AnalogEncoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	input, err := driver.OpenAnalog(cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to open analog channel %d: %w", cfg.ID, err)
	}

	input.SetPositionOffset(FractionalOffset(cfg.Offset))

	logger.Debug("Analog encoder configured",
		zap.Int("channel", cfg.ID),
		zap.Float64("offset", input.PositionOffset()))

	return &AnalogEncoder{input: input}, nil
}

// AbsoluteAngle never fails: analog reads are synchronous.
func (e *AnalogEncoder) AbsoluteAngle() (float64, error) {
	return NormalizeFraction(e.input.AbsolutePosition(), e.input.PositionOffset()), nil
}

func (e *AnalogEncoder) Internal() any {
	return e.input
}
