package motor

import (
	"fmt"
	"math"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"go.uber.org/zap"
)

const (
	// consecutive slow reference calls before the integrated sensor is
	// re-seeded from the absolute encoder
	encoderResetIterations = 500
	// rad/s below which the steer motor counts as stationary (0.5 deg/s)
	encoderResetMaxAngularVelocity = 0.5 * math.Pi / 180.0
)

// SteerControllerFactory opens a steer motor together with its absolute encoder.
type SteerControllerFactory interface {
	CreateSteer(cfg types.SteerConfiguration, bus string, mech *types.MechanicalConfiguration, container telemetry.Container) (SteerController, error)
	Info() FactoryInfo
}

// SteerFactoryBuilder collects electrical settings and position gains shared
// by every steer motor a factory opens.
type SteerFactoryBuilder struct {
	driver              Driver
	fam                 family
	voltageCompensation float64
	currentLimit        float64
	gains               types.PIDGains
	logger              *zap.Logger
}

func NewNeoSteerFactoryBuilder(driver Driver, logger *zap.Logger) *SteerFactoryBuilder {
	return newSteerFactoryBuilder(driver, neoFamily, logger)
}

func NewFalconSteerFactoryBuilder(driver Driver, logger *zap.Logger) *SteerFactoryBuilder {
	return newSteerFactoryBuilder(driver, falconFamily, logger)
}

func newSteerFactoryBuilder(driver Driver, fam family, logger *zap.Logger) *SteerFactoryBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SteerFactoryBuilder{
		driver: driver,
		fam:    fam,
		logger: logger,
	}
}

func (b *SteerFactoryBuilder) WithVoltageCompensation(nominalVoltage float64) *SteerFactoryBuilder {
	b.voltageCompensation = nominalVoltage
	return b
}

func (b *SteerFactoryBuilder) WithCurrentLimit(currentLimit float64) *SteerFactoryBuilder {
	b.currentLimit = currentLimit
	return b
}

func (b *SteerFactoryBuilder) WithPIDConstants(proportional, integral, derivative float64) *SteerFactoryBuilder {
	b.gains = types.PIDGains{P: proportional, I: integral, D: derivative}
	return b
}

// Build binds the settings and the encoder factory the steer motors will pair with.
func (b *SteerFactoryBuilder) Build(encoders *encoder.Factory) SteerControllerFactory {
	return &steerFactory{
		driver:              b.driver,
		encoders:            encoders,
		fam:                 b.fam,
		voltageCompensation: b.voltageCompensation,
		currentLimit:        b.currentLimit,
		gains:               b.gains,
		logger:              b.logger,
	}
}

type steerFactory struct {
	driver              Driver
	encoders            *encoder.Factory
	fam                 family
	voltageCompensation float64
	currentLimit        float64
	gains               types.PIDGains
	logger              *zap.Logger
}

func (f *steerFactory) Info() FactoryInfo {
	gains := f.gains
	return FactoryInfo{
		MotorType:           f.fam.motorType,
		VoltageCompensation: f.voltageCompensation,
		CurrentLimit:        f.currentLimit,
		Gains:               &gains,
	}
}

func (f *steerFactory) CreateSteer(cfg types.SteerConfiguration, bus string, mech *types.MechanicalConfiguration, container telemetry.Container) (SteerController, error) {
	abs, err := f.encoders.Create(cfg.Encoder)
	if err != nil {
		return nil, fmt.Errorf("failed to create steer encoder: %w", err)
	}

	gains := f.gains
	m, err := f.driver.OpenMotor(Settings{
		Port:                cfg.MotorPort,
		Bus:                 bus,
		VoltageCompensation: f.voltageCompensation,
		CurrentLimit:        f.currentLimit,
		Inverted:            mech.SteerInverted,
		Brake:               true,
		Gains:               &gains,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s steer motor %d: %w", f.fam.motorType, cfg.MotorPort, err)
	}

	c := &steerController{
		motor:   m,
		encoder: abs,
		// native position -> radians at the wheel
		positionScale: 2 * math.Pi * mech.SteerReduction / f.fam.unitsPerRotation,
		velocityScale: 2 * math.Pi * mech.SteerReduction * f.fam.velocityToRPS,
		logger:        f.logger,
	}

	angle, err := abs.AbsoluteAngle()
	if err != nil {
		return nil, fmt.Errorf("failed to read initial steer angle: %w", err)
	}
	if err := m.SetSensorPosition(angle / c.positionScale); err != nil {
		return nil, fmt.Errorf("failed to seed steer sensor position: %w", err)
	}

	telemetry.AddNumber(container, "Current Angle", func() float64 { return degrees(c.StateAngle()) })
	telemetry.AddNumber(container, "Target Angle", func() float64 { return degrees(c.ReferenceAngle()) })
	telemetry.AddNumber(container, "Absolute Encoder Angle", func() float64 {
		a, err := abs.AbsoluteAngle()
		if err != nil {
			return math.NaN()
		}
		return degrees(a)
	})

	f.logger.Info("Steer motor created",
		zap.Stringer("motor_type", f.fam.motorType),
		zap.Int("port", cfg.MotorPort),
		zap.String("bus", bus),
		zap.Stringer("encoder", cfg.Encoder),
		zap.Float64("initial_angle", angle))

	return c, nil
}

type steerController struct {
	motor         Motor
	encoder       encoder.AbsoluteEncoder
	positionScale float64
	velocityScale float64
	logger        *zap.Logger

	referenceAngle float64
	resetIteration int
}

func (c *steerController) ReferenceAngle() float64 {
	return c.referenceAngle
}

// SetReferenceAngle commands the equivalent of angle closest to the current
// continuous motor position so the wheel never turns more than half a rotation.
func (c *steerController) SetReferenceAngle(angle float64) error {
	current := c.motor.SensorPosition() * c.positionScale

	// the integrated sensor drifts; re-seed it once the wheel sat still long enough
	if math.Abs(c.motor.SensorVelocity()*c.velocityScale) < encoderResetMaxAngularVelocity {
		c.resetIteration++
		if c.resetIteration >= encoderResetIterations {
			c.resetIteration = 0
			abs, err := c.encoder.AbsoluteAngle()
			if err != nil {
				c.logger.Warn("Skipping steer sensor re-seed", zap.Error(err))
			} else if err := c.motor.SetSensorPosition(abs / c.positionScale); err != nil {
				c.logger.Warn("Failed to re-seed steer sensor", zap.Error(err))
			} else {
				current = abs
			}
		}
	} else {
		c.resetIteration = 0
	}

	currentMod := wrapAngle(current)

	adjusted := angle + current - currentMod
	if angle-currentMod > math.Pi {
		adjusted -= 2 * math.Pi
	} else if angle-currentMod < -math.Pi {
		adjusted += 2 * math.Pi
	}

	if err := c.motor.SetPositionReference(adjusted / c.positionScale); err != nil {
		return fmt.Errorf("failed to set steer reference: %w", err)
	}

	c.referenceAngle = angle
	return nil
}

func (c *steerController) StateAngle() float64 {
	return wrapAngle(c.motor.SensorPosition() * c.positionScale)
}

func wrapAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return angle
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
