// Package encoder implements absolute steer-angle sensors on top of narrow
// driver contracts for analog inputs and CAN bus sensors.
package encoder

import "fmt"

// AbsoluteEncoder reports the wheel's steer angle relative to the configured
// forward-facing zero.
type AbsoluteEncoder interface {
	// AbsoluteAngle returns radians in [0, 2π).
	AbsoluteAngle() (float64, error)

	// Internal exposes the driver handle for diagnostics. Callers must not
	// depend on its concrete type.
	Internal() any
}

// AnalogInput is a sensor reporting position as a fraction of one rotation.
type AnalogInput interface {
	SetPositionOffset(offset float64)
	PositionOffset() float64
	AbsolutePosition() float64
}

// AnalogDriver opens analog inputs by channel.
type AnalogDriver interface {
	OpenAnalog(channel int) (AnalogInput, error)
}

// ErrorCode is the status a CAN device returns for configuration writes and reads.
type ErrorCode int

const (
	ErrorCodeOK              ErrorCode = 0
	ErrorCodeCANMessageStale ErrorCode = 1
	ErrorCodeTxFailed        ErrorCode = -1
	ErrorCodeInvalidParam    ErrorCode = -2
	ErrorCodeRxTimeout       ErrorCode = -3
	ErrorCodeTxTimeout       ErrorCode = -4
	ErrorCodeSensorNotFound  ErrorCode = -10
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeOK:
		return "OK"
	case ErrorCodeCANMessageStale:
		return "CAN_MSG_STALE"
	case ErrorCodeTxFailed:
		return "TxFailed"
	case ErrorCodeInvalidParam:
		return "InvalidParamValue"
	case ErrorCodeRxTimeout:
		return "RxTimeout"
	case ErrorCodeTxTimeout:
		return "TxTimeout"
	case ErrorCodeSensorNotFound:
		return "SensorNotPresent"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// AbsoluteSensorRange selects how a CAN sensor reports its absolute position.
type AbsoluteSensorRange int

const (
	RangeUnsigned0To360 AbsoluteSensorRange = iota
	RangeSigned180
)

// StatusFrame identifies a periodic frame a CAN sensor broadcasts.
type StatusFrame int

const (
	StatusFrameSensorData StatusFrame = iota
	StatusFrameVbatAndFaults
)

// CANCoderSettings is written in one call when a CAN sensor is configured.
type CANCoderSettings struct {
	AbsoluteSensorRange AbsoluteSensorRange
	MagnetOffsetDegrees float64
	SensorDirection     bool // true reports clockwise rotation as positive
	InitStrategy        string
}

// CANCoder is a sensor reached over a shared CAN bus.
type CANCoder interface {
	ConfigAllSettings(settings CANCoderSettings, timeoutMs int) ErrorCode
	SetStatusFramePeriod(frame StatusFrame, periodMs int, timeoutMs int) ErrorCode
	// Position returns degrees; LastError reports the status of that read.
	Position() float64
	LastError() ErrorCode
	DeviceID() int
}

// CANCoderDriver opens CAN sensors by device id and bus name.
type CANCoderDriver interface {
	OpenCANCoder(deviceID int, bus string) (CANCoder, error)
}

// Direction is the rotation a CAN sensor counts as positive.
type Direction int

const (
	CounterClockwise Direction = iota
	Clockwise
)
