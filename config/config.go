package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/warp/rota-engine/rota"
)

// EnvPrefix prefixes environment overrides, e.g. ROTA_SERVER_PORT.
const EnvPrefix = "ROTA"

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig represents store configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or memory
	Path   string `mapstructure:"path"`   // sqlite only; ":memory:" for an in-memory database
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"` // empty logs to stderr
	Level string `mapstructure:"level"`
}

// ScheduleConfig represents schedule generation settings
type ScheduleConfig struct {
	DefaultRotation       string `mapstructure:"default_rotation"`        // roster rows without JORNADA
	LegacyDefaultRotation string `mapstructure:"legacy_default_rotation"` // legacy store entries without a choice
	BatchWorkers          int    `mapstructure:"batch_workers"`
	MaxRangeDays          int    `mapstructure:"max_range_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "rota.db")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("schedule.default_rotation", string(rota.DefaultVariant))
	v.SetDefault("schedule.legacy_default_rotation", string(rota.SixOneFixed))
	v.SetDefault("schedule.batch_workers", 8)
	v.SetDefault("schedule.max_range_days", 366)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return &config
}

// Load loads configuration from file. A missing file is not an error:
// defaults and ROTA_* environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rota")
		v.AddConfigPath("/etc/rota")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, c.Database.Driver)
	}
	if c.Schedule.BatchWorkers <= 0 {
		return fmt.Errorf("schedule.batch_workers must be positive")
	}
	if c.Schedule.MaxRangeDays <= 0 {
		return fmt.Errorf("schedule.max_range_days must be positive")
	}
	if _, ok := rota.LookupVariant(c.Schedule.DefaultRotation); !ok {
		return fmt.Errorf("schedule.default_rotation: unknown rotation %q", c.Schedule.DefaultRotation)
	}
	if _, ok := rota.LookupVariant(c.Schedule.LegacyDefaultRotation); !ok {
		return fmt.Errorf("schedule.legacy_default_rotation: unknown rotation %q", c.Schedule.LegacyDefaultRotation)
	}
	return nil
}

// DefaultVariant returns the rotation for roster rows without one.
func (c *ScheduleConfig) DefaultVariant() rota.Variant {
	return rota.ParseVariant(c.DefaultRotation)
}

// LegacyVariant returns the rotation for legacy entries without one.
func (c *ScheduleConfig) LegacyVariant() rota.Variant {
	return rota.ParseVariant(c.LegacyDefaultRotation)
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
