package encoder_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/hal/sim"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCANCoder(t *testing.T, sensors *sim.Sensors, cfg types.AbsoluteEncoderConfiguration) *encoder.CANCoderEncoder {
	t.Helper()
	enc, err := encoder.NewCANCoderEncoder(sensors, cfg, encoder.CounterClockwise, zaptest.NewLogger(t))
	require.NoError(t, err)
	return enc
}

func TestCANCoderEncoder_Configure(t *testing.T) {
	sensors := sim.NewSensors()

	newCANCoder(t, sensors, types.NewCANCoderConfiguration(9, math.Pi/2, "canivore"))

	dev := sensors.CANCoder(9, "canivore")
	settings := dev.Settings()
	assert.Equal(t, encoder.RangeUnsigned0To360, settings.AbsoluteSensorRange)
	assert.InDelta(t, 90.0, settings.MagnetOffsetDegrees, 1e-9)
	assert.False(t, settings.SensorDirection)
	assert.Equal(t, string(types.BootToAbsolutePosition), settings.InitStrategy)
	assert.Equal(t, types.DefaultStatusFramePeriodMs, dev.StatusFramePeriod())
}

func TestCANCoderEncoder_ClockwiseDirection(t *testing.T) {
	sensors := sim.NewSensors()
	factory := encoder.NewFactory(nil, sensors, zaptest.NewLogger(t)).WithDirection(encoder.Clockwise)

	_, err := factory.Create(types.NewCANCoderConfigurationWithStrategy(4, 0, "", types.BootToZero))
	require.NoError(t, err)

	settings := sensors.CANCoder(4, "").Settings()
	assert.True(t, settings.SensorDirection)
	assert.Equal(t, string(types.BootToZero), settings.InitStrategy)
}

func TestCANCoderEncoder_ConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		configCode encoder.ErrorCode
		periodCode encoder.ErrorCode
		op         string
		code       int
	}{
		{"settings write", encoder.ErrorCodeTxTimeout, encoder.ErrorCodeOK, "Failed to configure CANCoder", -4},
		{"status frame write", encoder.ErrorCodeOK, encoder.ErrorCodeSensorNotFound, "Failed to configure CANCoder update rate", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensors := sim.NewSensors()
			dev := sensors.CANCoder(1, "")
			dev.ConfigCode = tt.configCode
			dev.PeriodCode = tt.periodCode

			_, err := encoder.NewCANCoderEncoder(sensors, types.NewCANCoderConfiguration(1, 0, ""), encoder.CounterClockwise, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfiguration))

			var cfgErr *types.InvalidConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.op, cfgErr.Op)
			assert.Equal(t, tt.code, cfgErr.Code)
		})
	}
}

func TestCANCoderEncoder_AngleWrapping(t *testing.T) {
	tests := []struct {
		degrees  float64
		expected float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{-90, 3 * math.Pi / 2},
		{360, 0},
		{450, math.Pi / 2},
	}

	for _, tt := range tests {
		sensors := sim.NewSensors()
		enc := newCANCoder(t, sensors, types.NewCANCoderConfiguration(2, 0, ""))
		sensors.CANCoder(2, "").SetDegrees(tt.degrees)

		angle, err := enc.AbsoluteAngle()
		require.NoError(t, err)
		assert.InDelta(t, tt.expected, angle, 1e-9, "degrees %f", tt.degrees)
	}
}

func TestCANCoderEncoder_RetryRecovers(t *testing.T) {
	sensors := sim.NewSensors()
	enc := newCANCoder(t, sensors, types.NewCANCoderConfiguration(5, 0, ""))
	dev := sensors.CANCoder(5, "")
	dev.SetDegrees(180)
	dev.FailReads(encoder.ErrorCodeRxTimeout, encoder.ErrorCodeCANMessageStale)

	angle, err := enc.AbsoluteAngle()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, angle, 1e-9)
	assert.Equal(t, 3, dev.Reads())
}

func TestCANCoderEncoder_RetryExhausted(t *testing.T) {
	sensors := sim.NewSensors()
	enc := newCANCoder(t, sensors, types.NewCANCoderConfiguration(7, 0, ""))
	dev := sensors.CANCoder(7, "")
	dev.FailReads(
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
	)

	start := time.Now()
	_, err := enc.AbsoluteAngle()
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSensorReadExhausted))

	var readErr *types.SensorReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, 7, readErr.DeviceID)
	assert.Equal(t, types.DefaultReadAttempts, readErr.Attempts)
	assert.Contains(t, err.Error(), "CANcoder 7")

	assert.Equal(t, 1+types.DefaultReadAttempts, dev.Reads())
	assert.GreaterOrEqual(t, elapsed, time.Duration(types.DefaultReadAttempts)*10*time.Millisecond)
}

func TestCANCoderEncoder_CustomAttempts(t *testing.T) {
	sensors := sim.NewSensors()
	cfg := types.NewCANCoderConfiguration(8, 0, "")
	cfg.ReadAttempts = 1
	enc := newCANCoder(t, sensors, cfg)
	dev := sensors.CANCoder(8, "")
	dev.FailReads(encoder.ErrorCodeTxFailed, encoder.ErrorCodeTxFailed, encoder.ErrorCodeTxFailed)

	_, err := enc.AbsoluteAngle()
	require.Error(t, err)
	assert.Equal(t, 2, dev.Reads())

	// one failure left in the queue, absorbed by the single retry
	angle, err := enc.AbsoluteAngle()
	require.NoError(t, err)
	assert.Equal(t, 0.0, angle)
}

func TestCANCoderEncoder_Idempotent(t *testing.T) {
	sensors := sim.NewSensors()
	enc := newCANCoder(t, sensors, types.NewCANCoderConfiguration(3, 0, ""))
	sensors.CANCoder(3, "").SetDegrees(123.4)

	first, err := enc.AbsoluteAngle()
	require.NoError(t, err)
	second, err := enc.AbsoluteAngle()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
