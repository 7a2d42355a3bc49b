// Package sim provides in-memory implementations of the sensor and actuator
// driver contracts for tests and hardware-less runs.
package sim

import (
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenSwerveCore/internal/encoder"
)

// AnalogInput is a simulated fractional-rotation sensor.
type AnalogInput struct {
	mu       sync.Mutex
	Channel  int
	position float64
	offset   float64
}

func (a *AnalogInput) SetPositionOffset(offset float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = offset
}

func (a *AnalogInput) PositionOffset() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

func (a *AnalogInput) AbsolutePosition() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// SetRaw sets the raw fractional reading in [0, 1).
func (a *AnalogInput) SetRaw(position float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = position
}

// CANCoder is a simulated CAN absolute encoder. Read failures are scripted
// with FailReads; each read consumes one queued code.
type CANCoder struct {
	mu       sync.Mutex
	id       int
	Bus      string
	degrees  float64
	queued   []encoder.ErrorCode
	lastErr  encoder.ErrorCode
	reads    int
	settings encoder.CANCoderSettings
	period   int

	// ConfigCode and PeriodCode are returned by the configuration writes.
	ConfigCode encoder.ErrorCode
	PeriodCode encoder.ErrorCode
}

func NewCANCoder(id int) *CANCoder {
	return &CANCoder{id: id}
}

func (c *CANCoder) ConfigAllSettings(settings encoder.CANCoderSettings, timeoutMs int) encoder.ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	return c.ConfigCode
}

func (c *CANCoder) SetStatusFramePeriod(frame encoder.StatusFrame, periodMs int, timeoutMs int) encoder.ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if frame == encoder.StatusFrameSensorData {
		c.period = periodMs
	}
	return c.PeriodCode
}

func (c *CANCoder) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	c.lastErr = encoder.ErrorCodeOK
	if len(c.queued) > 0 {
		c.lastErr = c.queued[0]
		c.queued = c.queued[1:]
	}
	return c.degrees
}

func (c *CANCoder) LastError() encoder.ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *CANCoder) DeviceID() int {
	return c.id
}

// SetDegrees sets the reported position.
func (c *CANCoder) SetDegrees(deg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.degrees = deg
}

// FailReads queues codes returned by the next len(codes) reads.
func (c *CANCoder) FailReads(codes ...encoder.ErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued = append(c.queued, codes...)
}

// Reads returns how many position reads were made.
func (c *CANCoder) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *CANCoder) Settings() encoder.CANCoderSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *CANCoder) StatusFramePeriod() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

type canKey struct {
	id  int
	bus string
}

// Sensors hands out simulated analog inputs and CANCoders, creating each on
// first use so tests can script them before or after a module is built.
type Sensors struct {
	mu        sync.Mutex
	analogs   map[int]*AnalogInput
	cancoders map[canKey]*CANCoder
	// OpenErr fails every open call when set.
	OpenErr error
}

func NewSensors() *Sensors {
	return &Sensors{
		analogs:   make(map[int]*AnalogInput),
		cancoders: make(map[canKey]*CANCoder),
	}
}

func (s *Sensors) OpenAnalog(channel int) (encoder.AnalogInput, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	if channel < 0 {
		return nil, fmt.Errorf("invalid analog channel %d", channel)
	}
	return s.Analog(channel), nil
}

func (s *Sensors) OpenCANCoder(deviceID int, bus string) (encoder.CANCoder, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	if deviceID < 0 || deviceID > 62 {
		return nil, fmt.Errorf("invalid CAN device id %d", deviceID)
	}
	return s.CANCoder(deviceID, bus), nil
}

// Analog returns the simulated input on channel.
func (s *Sensors) Analog(channel int) *AnalogInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.analogs[channel]
	if !ok {
		a = &AnalogInput{Channel: channel}
		s.analogs[channel] = a
	}
	return a
}

// CANCoder returns the simulated sensor with id on bus.
func (s *Sensors) CANCoder(id int, bus string) *CANCoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := canKey{id: id, bus: bus}
	c, ok := s.cancoders[k]
	if !ok {
		c = NewCANCoder(id)
		c.Bus = bus
		s.cancoders[k] = c
	}
	return c
}
