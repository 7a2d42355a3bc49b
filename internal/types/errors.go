package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationIncomplete = errors.New("configuration incomplete")
	ErrInvalidConfiguration    = errors.New("invalid configuration")
	ErrSensorReadExhausted     = errors.New("sensor read exhausted")
	ErrUnrecognizedVariant     = errors.New("unrecognized variant")
)

// ConfigurationIncompleteError names a required builder field that was never set.
// Cause carries why the field stayed empty, e.g. ErrUnrecognizedVariant.
type ConfigurationIncompleteError struct {
	Field string
	Cause error
}

func (e *ConfigurationIncompleteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration incomplete: %s is not set: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("configuration incomplete: %s is not set", e.Field)
}

func (e *ConfigurationIncompleteError) Is(target error) bool {
	return target == ErrConfigurationIncomplete
}

func (e *ConfigurationIncompleteError) Unwrap() error {
	return e.Cause
}

// InvalidConfigurationError reports a rejected configuration value or a
// configuration write that a driver answered with a non-OK code.
type InvalidConfigurationError struct {
	Op     string
	Detail string
	Code   int
}

func (e *InvalidConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: error code %d", e.Op, e.Code)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// SensorReadError is returned once a bus sensor kept failing for every retry.
type SensorReadError struct {
	DeviceID int
	Attempts int
	Code     int
}

func (e *SensorReadError) Error() string {
	return fmt.Sprintf("failed to retrieve CANcoder %d absolute position after %d tries (code %d)",
		e.DeviceID, e.Attempts, e.Code)
}

func (e *SensorReadError) Is(target error) bool {
	return target == ErrSensorReadExhausted
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
