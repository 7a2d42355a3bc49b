package types

import "math"

// MechanicalConfiguration describes the reductions and wheel geometry of one
// module family. Instances are shared by pointer between modules of the same
// physical type and must not be modified after creation.
type MechanicalConfiguration struct {
	Name           string  `yaml:"name" json:"name"`
	WheelDiameter  float64 `yaml:"wheel_diameter" json:"wheel_diameter"` // meters
	DriveReduction float64 `yaml:"drive_reduction" json:"drive_reduction"`
	DriveInverted  bool    `yaml:"drive_inverted" json:"drive_inverted"`
	SteerReduction float64 `yaml:"steer_reduction" json:"steer_reduction"`
	SteerInverted  bool    `yaml:"steer_inverted" json:"steer_inverted"`
}

// MaxFreeSpeed returns the wheel surface speed in m/s when the drive motor
// spins at its free speed.
func (m *MechanicalConfiguration) MaxFreeSpeed(motor MotorType) float64 {
	return motor.FreeSpeedRPM() / 60.0 * m.DriveReduction * m.WheelDiameter * math.Pi
}
