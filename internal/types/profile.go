package types

// PIDGains holds closed-loop position gains for a steer actuator.
type PIDGains struct {
	P float64 `json:"p" mapstructure:"p"`
	I float64 `json:"i" mapstructure:"i"`
	D float64 `json:"d" mapstructure:"d"`
}

// ModuleConfiguration is the electrical and gain profile applied to the
// actuators of a module.
type ModuleConfiguration struct {
	NominalVoltage    float64  `json:"nominal_voltage" mapstructure:"nominal_voltage"`
	DriveCurrentLimit float64  `json:"drive_current_limit" mapstructure:"drive_current_limit"`
	SteerCurrentLimit float64  `json:"steer_current_limit" mapstructure:"steer_current_limit"`
	Steer             PIDGains `json:"steer" mapstructure:"steer"`
}

// NewModuleConfiguration returns the stock electrical limits with zero steer gains.
func NewModuleConfiguration() ModuleConfiguration {
	return ModuleConfiguration{
		NominalVoltage:    12.0,
		DriveCurrentLimit: 80.0,
		SteerCurrentLimit: 20.0,
	}
}

func DefaultSteerNEO() ModuleConfiguration {
	cfg := NewModuleConfiguration()
	cfg.Steer = PIDGains{P: 1.0, I: 0.0, D: 0.1}
	return cfg
}

func DefaultSteerFalcon() ModuleConfiguration {
	cfg := NewModuleConfiguration()
	cfg.Steer = PIDGains{P: 0.2, I: 0.0, D: 0.1}
	return cfg
}

// DefaultSteerProfile returns the family preset used when a builder was
// created without an explicit configuration.
func DefaultSteerProfile(motor MotorType) (ModuleConfiguration, bool) {
	switch motor {
	case MotorTypeNEO:
		return DefaultSteerNEO(), true
	case MotorTypeFalcon:
		return DefaultSteerFalcon(), true
	default:
		return ModuleConfiguration{}, false
	}
}
