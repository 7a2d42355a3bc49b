package websocket

import (
	"time"

	"github.com/KevinKickass/OpenSwerveCore/internal/telemetry"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Periodic readouts of every module
	MessageTypeTelemetrySample MessageType = "telemetry_sample"

	// A module accepted a new setpoint
	MessageTypeModuleState MessageType = "module_state"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ModuleStateData is the state of one module after a setpoint.
type ModuleStateData struct {
	Module        string  `json:"module"`
	DriveVoltage  float64 `json:"drive_voltage"`
	TargetAngle   float64 `json:"target_angle"`
	SteerAngle    float64 `json:"steer_angle"`
	DriveVelocity float64 `json:"drive_velocity"`
}

// SystemStatusData reports a lifecycle transition.
type SystemStatusData struct {
	State   string `json:"state"`
	Modules int    `json:"modules"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewTelemetryMessage(snap telemetry.Snapshot) Message {
	return Message{
		Type:      MessageTypeTelemetrySample,
		Timestamp: snap.Timestamp,
		Data:      snap,
	}
}

func NewModuleStateMessage(data ModuleStateData) Message {
	return NewMessage(MessageTypeModuleState, data)
}

func NewSystemStatusMessage(state string, modules int) Message {
	return NewMessage(MessageTypeSystemStatus, SystemStatusData{
		State:   state,
		Modules: modules,
	})
}
