package motor_test

import (
	"errors"
	"math"
	"testing"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/hal/sim"
	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type steerRig struct {
	motors  *sim.Motors
	sensors *sim.Sensors
	factory motor.SteerControllerFactory
}

func newNeoSteerRig(t *testing.T) *steerRig {
	t.Helper()
	motors := sim.NewMotors("neo")
	sensors := sim.NewSensors()
	logger := zaptest.NewLogger(t)
	factory := motor.NewNeoSteerFactoryBuilder(motors, logger).
		WithVoltageCompensation(12).
		WithCurrentLimit(20).
		WithPIDConstants(1.0, 0.0, 0.1).
		Build(encoder.NewFactory(sensors, sensors, logger))
	return &steerRig{motors: motors, sensors: sensors, factory: factory}
}

func steerConfig(encoderID int) types.SteerConfiguration {
	return types.SteerConfiguration{
		MotorPort: 5,
		Encoder:   types.NewCANCoderConfiguration(encoderID, 0, ""),
	}
}

func TestSteerFactory_Settings(t *testing.T) {
	rig := newNeoSteerRig(t)

	info := rig.factory.Info()
	assert.Equal(t, types.MotorTypeNEO, info.MotorType)
	require.NotNil(t, info.Gains)
	assert.Equal(t, types.PIDGains{P: 1.0, I: 0.0, D: 0.1}, *info.Gains)

	_, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.NoError(t, err)

	settings := rig.motors.Motor(5, "").Settings()
	assert.Equal(t, 12.0, settings.VoltageCompensation)
	assert.Equal(t, 20.0, settings.CurrentLimit)
	assert.False(t, settings.Inverted)
	require.NotNil(t, settings.Gains)
	assert.Equal(t, 1.0, settings.Gains.P)
}

func TestSteerController_SeedsFromAbsoluteEncoder(t *testing.T) {
	rig := newNeoSteerRig(t)
	rig.sensors.CANCoder(11, "").SetDegrees(90)

	steer, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.NoError(t, err)

	assert.InDelta(t, math.Pi/2, steer.StateAngle(), 1e-9)
	// a quarter wheel turn is one motor rotation at 0.25 reduction
	assert.InDelta(t, 1.0, rig.motors.Motor(5, "").SensorPosition(), 1e-9)
}

func TestSteerController_NearestEquivalent(t *testing.T) {
	tests := []struct {
		name      string
		startDeg  float64
		target    float64
		continuous float64
	}{
		{"no wrap", 0, 1.0, 1.0},
		{"wrap backwards", 90, 2*math.Pi - 0.1, -0.1},
		{"wrap forwards", 350, 0.1, 2*math.Pi + 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newNeoSteerRig(t)
			rig.sensors.CANCoder(11, "").SetDegrees(tt.startDeg)

			steer, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
			require.NoError(t, err)

			require.NoError(t, steer.SetReferenceAngle(tt.target))
			assert.Equal(t, tt.target, steer.ReferenceAngle())

			positionScale := 2 * math.Pi * testMech.SteerReduction
			assert.InDelta(t, tt.continuous, rig.motors.Motor(5, "").Reference()*positionScale, 1e-9)

			state := steer.StateAngle()
			assert.GreaterOrEqual(t, state, 0.0)
			assert.Less(t, state, 2*math.Pi)
			assert.InDelta(t, tt.target, state, 1e-9)
		})
	}
}

func TestSteerController_ReseedsWhenStationary(t *testing.T) {
	rig := newNeoSteerRig(t)
	dev := rig.sensors.CANCoder(11, "")

	steer, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.NoError(t, err)
	require.Equal(t, 1, dev.Reads())

	for i := 0; i < 499; i++ {
		require.NoError(t, steer.SetReferenceAngle(1.0))
	}
	assert.Equal(t, 1, dev.Reads())

	require.NoError(t, steer.SetReferenceAngle(1.0))
	assert.Equal(t, 2, dev.Reads())
}

func TestSteerController_NoReseedWhileMoving(t *testing.T) {
	rig := newNeoSteerRig(t)
	dev := rig.sensors.CANCoder(11, "")

	steer, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.NoError(t, err)
	rig.motors.Motor(5, "").SetVelocity(60)

	for i := 0; i < 600; i++ {
		require.NoError(t, steer.SetReferenceAngle(1.0))
	}
	assert.Equal(t, 1, dev.Reads())
}

func TestSteerController_FalconUnits(t *testing.T) {
	motors := sim.NewMotors("falcon")
	sensors := sim.NewSensors()
	sensors.CANCoder(11, "").SetDegrees(180)

	factory := motor.NewFalconSteerFactoryBuilder(motors, nil).
		WithPIDConstants(0.2, 0, 0.1).
		Build(encoder.NewFactory(sensors, sensors, nil))
	steer, err := factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.NoError(t, err)

	// half a wheel turn = 2 motor turns = 4096 ticks
	assert.InDelta(t, 4096.0, motors.Motor(5, "").SensorPosition(), 1e-6)
	assert.InDelta(t, math.Pi, steer.StateAngle(), 1e-9)
}

func TestSteerController_Telemetry(t *testing.T) {
	rig := newNeoSteerRig(t)
	rig.sensors.CANCoder(11, "").SetDegrees(45)
	rec := newRecorder()

	steer, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, rec)
	require.NoError(t, err)
	require.NoError(t, steer.SetReferenceAngle(math.Pi/2))

	assert.Equal(t, []string{"Absolute Encoder Angle", "Current Angle", "Target Angle"}, rec.names())
	assert.InDelta(t, 45.0, rec.value("Absolute Encoder Angle"), 1e-9)
	assert.InDelta(t, 90.0, rec.value("Current Angle"), 1e-9)
	assert.InDelta(t, 90.0, rec.value("Target Angle"), 1e-9)
}

func TestSteerFactory_EncoderFailure(t *testing.T) {
	rig := newNeoSteerRig(t)
	rig.sensors.CANCoder(11, "").FailReads(
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
		encoder.ErrorCodeRxTimeout,
	)

	_, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSensorReadExhausted))
}

func TestSteerFactory_EncoderConfigFailure(t *testing.T) {
	rig := newNeoSteerRig(t)
	rig.sensors.CANCoder(11, "").ConfigCode = encoder.ErrorCodeTxTimeout

	_, err := rig.factory.CreateSteer(steerConfig(11), "", testMech, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidConfiguration))
	assert.Equal(t, 0, rig.motors.Opened())
}
