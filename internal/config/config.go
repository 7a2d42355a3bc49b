package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
	"github.com/spf13/viper"
)

type Config struct {
	Profile   types.ModuleConfiguration `mapstructure:"profile" json:"profile"`
	Modules   []ModuleConfig            `mapstructure:"modules" json:"modules"`
	Dashboard DashboardConfig           `mapstructure:"dashboard" json:"dashboard"`
	Database  DatabaseConfig            `mapstructure:"database" json:"database"`
	Log       LogConfig                 `mapstructure:"log" json:"log"`

	// CustomProfile is true when the file carried steer gains; otherwise
	// builders fall back to the per-motor defaults.
	CustomProfile bool `mapstructure:"-" json:"-"`
}

// ModuleConfig describes one module as written in the config file.
type ModuleConfig struct {
	Name      string        `mapstructure:"name" json:"name"`
	Builder   string        `mapstructure:"builder" json:"builder"`
	GearRatio string        `mapstructure:"gear_ratio" json:"gear_ratio"`
	Drive     MotorConfig   `mapstructure:"drive" json:"drive"`
	Steer     MotorConfig   `mapstructure:"steer" json:"steer"`
	Encoder   EncoderConfig `mapstructure:"encoder" json:"encoder"`
}

type MotorConfig struct {
	Type string `mapstructure:"type" json:"type"`
	Port int    `mapstructure:"port" json:"port"`
	Bus  string `mapstructure:"bus" json:"bus"`
}

type EncoderConfig struct {
	Type   string  `mapstructure:"type" json:"type"`
	Port   int     `mapstructure:"port" json:"port"`
	Bus    string  `mapstructure:"bus" json:"bus"`
	Offset float64 `mapstructure:"offset" json:"offset"` // radians
}

type DashboardConfig struct {
	Enabled         bool          `mapstructure:"enabled" json:"enabled"`
	HTTPPort        int           `mapstructure:"http_port" json:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port" json:"grpc_port"`
	SampleInterval  time.Duration `mapstructure:"sample_interval" json:"sample_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled" json:"enabled"`
	Host           string `mapstructure:"host" json:"host"`
	Port           int    `mapstructure:"port" json:"port"`
	Database       string `mapstructure:"database" json:"database"`
	User           string `mapstructure:"user" json:"user"`
	Password       string `mapstructure:"password" json:"-"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
}

type LogConfig struct {
	Development bool   `mapstructure:"development" json:"development"`
	Level       string `mapstructure:"level" json:"level"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	// SWERVE_DASHBOARD_HTTP_PORT overrides dashboard.http_port
	v.SetEnvPrefix("SWERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	def := types.NewModuleConfiguration()
	v.SetDefault("profile.nominal_voltage", def.NominalVoltage)
	v.SetDefault("profile.drive_current_limit", def.DriveCurrentLimit)
	v.SetDefault("profile.steer_current_limit", def.SteerCurrentLimit)

	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.http_port", 8080)
	v.SetDefault("dashboard.grpc_port", 50051)
	v.SetDefault("dashboard.sample_interval", "20ms")
	v.SetDefault("dashboard.shutdown_timeout", "10s")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "swerve")
	v.SetDefault("database.user", "swerve")
	v.SetDefault("database.max_connections", 4)

	v.SetDefault("log.level", "info")
}

func decode(v *viper.Viper) (*Config, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateModules(v.Get("modules")); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.CustomProfile = v.IsSet("profile.steer")

	for i := range config.Modules {
		if config.Modules[i].Builder == "" {
			config.Modules[i].Builder = BuilderCurrent
		}
	}

	if err := validator.ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

const (
	BuilderCurrent = "current"
	BuilderLegacy  = "legacy"
)

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}
