// Package config provides Viper-based configuration loading for the survival simulator.
package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, receives a copy of everything written to stderr.
	File string `mapstructure:"file"`
}

// ContentConfig locates the YAML content catalog.
type ContentConfig struct {
	// Dir holds one subdirectory per definition kind.
	Dir string `mapstructure:"dir"`
}

// ScriptingConfig locates the Lua scripts and bounds their execution.
type ScriptingConfig struct {
	// Dir holds one subdirectory per script scope.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the instructions a single hook call may execute.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimulationConfig controls scenario runs.
type SimulationConfig struct {
	// Seed makes runs reproducible; zero draws from crypto/rand.
	Seed int64 `mapstructure:"seed"`
	// TelemetryDir receives CSV output; empty disables it.
	TelemetryDir string `mapstructure:"telemetry_dir"`
	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// MetabolismConfig drives the digestion ticker.
type MetabolismConfig struct {
	// TickInterval is the wall-clock time between ticks.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// TurnsPerTick is the game time one tick advances.
	TurnsPerTick int64 `mapstructure:"turns_per_tick"`
	// DailyKCal is the calorie requirement the guts digest toward.
	DailyKCal float64 `mapstructure:"daily_kcal"`
	// Hunger scales the guts' digestion rates.
	Hunger float64 `mapstructure:"hunger"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Metabolism MetabolismConfig `mapstructure:"metabolism"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error naming every violation.
func (c Config) Validate() error {
	var errs []error
	errs = append(errs, validateDatabase(c.Database)...)
	errs = append(errs, validateLogging(c.Logging)...)
	errs = append(errs, validateSimulation(c.Simulation)...)
	errs = append(errs, validateMetabolism(c.Metabolism)...)
	if c.Content.Dir == "" {
		errs = append(errs, errors.New("content.dir must not be empty"))
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var (
	sslModes  = []string{"disable", "require", "verify-ca", "verify-full"}
	logLevels = []string{"debug", "info", "warn", "error"}
	logFormat = []string{"json", "console"}
)

func validateDatabase(d DatabaseConfig) []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("database.host must not be empty"))
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, errors.New("database.user must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("database.name must not be empty"))
	}
	if !slices.Contains(sslModes, d.SSLMode) {
		errs = append(errs, fmt.Errorf("database.sslmode must be one of %v, got %q", sslModes, d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, fmt.Errorf("database.min_conns must be in [0, max_conns], got %d", d.MinConns))
	}
	return errs
}

func validateLogging(l LoggingConfig) []error {
	var errs []error
	if !slices.Contains(logLevels, l.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of %v, got %q", logLevels, l.Level))
	}
	if !slices.Contains(logFormat, l.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of %v, got %q", logFormat, l.Format))
	}
	return errs
}

func validateSimulation(s SimulationConfig) []error {
	var errs []error
	if s.Seed < 0 {
		errs = append(errs, fmt.Errorf("simulation.seed must not be negative, got %d", s.Seed))
	}
	if s.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(s.MetricsAddr); err != nil {
			errs = append(errs, fmt.Errorf("simulation.metrics_addr: %w", err))
		}
	}
	return errs
}

func validateMetabolism(m MetabolismConfig) []error {
	var errs []error
	if m.TickInterval <= 0 {
		errs = append(errs, errors.New("metabolism.tick_interval must be positive"))
	}
	if m.TurnsPerTick < 1 {
		errs = append(errs, fmt.Errorf("metabolism.turns_per_tick must be >= 1, got %d", m.TurnsPerTick))
	}
	if m.DailyKCal <= 0 {
		errs = append(errs, errors.New("metabolism.daily_kcal must be positive"))
	}
	if m.Hunger < 0 {
		errs = append(errs, errors.New("metabolism.hunger must not be negative"))
	}
	return errs
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SURVIVAL_ prefix
	v.SetEnvPrefix("SURVIVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "survival")
	v.SetDefault("database.password", "survival")
	v.SetDefault("database.name", "survival")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("content.dir", "content")

	v.SetDefault("scripting.dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 100_000)

	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.telemetry_dir", "")
	v.SetDefault("simulation.metrics_addr", "")

	v.SetDefault("metabolism.tick_interval", "1s")
	v.SetDefault("metabolism.turns_per_tick", 300)
	v.SetDefault("metabolism.daily_kcal", 2000)
	v.SetDefault("metabolism.hunger", 1.0)
}
