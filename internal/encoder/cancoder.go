package encoder

import (
	"fmt"
	"math"
	"time"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

const (
	configTimeoutMs = 250
	retryDelay      = 10 * time.Millisecond
)

// CANCoderEncoder reads a CAN bus absolute encoder, retrying reads the bus
// reports as failed.
type CANCoderEncoder struct {
	device   CANCoder
	attempts int
	logger   *zap.Logger
}

// NewCANCoderEncoder opens and configures a CAN sensor. Every configuration
// write that returns a non-OK code fails construction.
func NewCANCoderEncoder(
	driver CANCoderDriver,
	cfg types.AbsoluteEncoderConfiguration,
	direction Direction,
	logger *zap.Logger,
) (*CANCoderEncoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	strategy := cfg.InitStrategy
	if strategy == "" {
		strategy = types.BootToAbsolutePosition
	}
	period := cfg.StatusFramePeriod
	if period <= 0 {
		period = types.DefaultStatusFramePeriodMs
	}
	attempts := cfg.ReadAttempts
	if attempts <= 0 {
		attempts = types.DefaultReadAttempts
	}

	device, err := driver.OpenCANCoder(cfg.ID, cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open CANCoder %d on bus %q: %w", cfg.ID, cfg.Bus, err)
	}

	settings := CANCoderSettings{
		AbsoluteSensorRange: RangeUnsigned0To360,
		MagnetOffsetDegrees: cfg.Offset * 180.0 / math.Pi,
		SensorDirection:     direction == Clockwise,
		InitStrategy:        string(strategy),
	}
	if code := device.ConfigAllSettings(settings, configTimeoutMs); code != ErrorCodeOK {
		return nil, &types.InvalidConfigurationError{Op: "Failed to configure CANCoder", Code: int(code)}
	}

	if code := device.SetStatusFramePeriod(StatusFrameSensorData, period, configTimeoutMs); code != ErrorCodeOK {
		return nil, &types.InvalidConfigurationError{Op: "Failed to configure CANCoder update rate", Code: int(code)}
	}

	logger.Debug("CANCoder configured",
		zap.Int("device_id", cfg.ID),
		zap.String("bus", cfg.Bus),
		zap.Float64("magnet_offset_deg", settings.MagnetOffsetDegrees),
		zap.String("init_strategy", string(strategy)),
		zap.Int("status_frame_period_ms", period))

	return &CANCoderEncoder{
		device:   device,
		attempts: attempts,
		logger:   logger,
	}, nil
}

// AbsoluteAngle reads the sensor, retrying up to the configured number of
// times with a 10ms pause while the bus reports an error. It blocks for at
// most attempts*10ms and cannot be cancelled.
func (e *CANCoderEncoder) AbsoluteAngle() (float64, error) {
	angle := e.device.Position() * math.Pi / 180.0
	code := e.device.LastError()

	for i := 0; i < e.attempts; i++ {
		if code == ErrorCodeOK {
			break
		}
		e.logger.Debug("CANCoder read failed, retrying",
			zap.Int("device_id", e.device.DeviceID()),
			zap.Int("attempt", i+1),
			zap.Stringer("code", code))

		time.Sleep(retryDelay)
		angle = e.device.Position() * math.Pi / 180.0
		code = e.device.LastError()
	}

	if code != ErrorCodeOK {
		e.logger.Warn("CANCoder read exhausted retries",
			zap.Int("device_id", e.device.DeviceID()),
			zap.Int("attempts", e.attempts),
			zap.Stringer("code", code))
		return 0, &types.SensorReadError{DeviceID: e.device.DeviceID(), Attempts: e.attempts, Code: int(code)}
	}

	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return angle, nil
}

func (e *CANCoderEncoder) Internal() any {
	return e.device
}
