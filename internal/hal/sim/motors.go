package sim

import (
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenSwerveCore/internal/motor"
)

// Motor is a simulated actuator. Position references are applied instantly.
type Motor struct {
	mu        sync.Mutex
	settings  motor.Settings
	voltage   float64
	reference float64
	position  float64
	velocity  float64
}

func (m *Motor) SetVoltage(volts float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voltage = volts
	return nil
}

func (m *Motor) SetPositionReference(position float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reference = position
	m.position = position
	return nil
}

func (m *Motor) SensorPosition() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Motor) SensorVelocity() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.velocity
}

func (m *Motor) SetSensorPosition(position float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = position
	return nil
}

// SetVelocity sets the native velocity the motor reports.
func (m *Motor) SetVelocity(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.velocity = v
}

func (m *Motor) Settings() motor.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *Motor) Voltage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voltage
}

func (m *Motor) Reference() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reference
}

type motorKey struct {
	port int
	bus  string
}

// Motors is a simulated motor-controller family.
type Motors struct {
	mu     sync.Mutex
	Family string
	motors map[motorKey]*Motor
	// OpenErr fails every open call when set.
	OpenErr error
}

func NewMotors(family string) *Motors {
	return &Motors{
		Family: family,
		motors: make(map[motorKey]*Motor),
	}
}

func (d *Motors) OpenMotor(settings motor.Settings) (motor.Motor, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	if settings.Port < 0 {
		return nil, fmt.Errorf("%s: invalid port %d", d.Family, settings.Port)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	k := motorKey{port: settings.Port, bus: settings.Bus}
	m, ok := d.motors[k]
	if !ok {
		m = &Motor{}
		d.motors[k] = m
	}
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
	return m, nil
}

// Motor returns the motor opened on port and bus, or nil.
func (d *Motors) Motor(port int, bus string) *Motor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.motors[motorKey{port: port, bus: bus}]
}

// Opened returns how many distinct motors were opened.
func (d *Motors) Opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.motors)
}
