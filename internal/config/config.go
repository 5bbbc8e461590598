// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-tracker.
type Configuration struct {
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Storage    StorageConfig    `yaml:"storage,omitempty"`
	Simulation SimulationConfig `yaml:"simulation,omitempty"`
	Reminders  RemindersConfig  `yaml:"reminders,omitempty"`
	Loans      []Loan           `yaml:"loans,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// StorageConfig selects and configures the portfolio store.
type StorageConfig struct {
	Backend  string `yaml:"backend,omitempty"`  // memory, file, sqlite, postgres, redis
	Path     string `yaml:"path,omitempty"`     // directory for file and sqlite
	DSN      string `yaml:"dsn,omitempty"`      // postgres connection string
	Address  string `yaml:"address,omitempty"`  // redis host:port
	Password string `yaml:"password,omitempty"` // redis password
	DB       int    `yaml:"db,omitempty"`       // redis database
	Codec    string `yaml:"codec,omitempty"`    // json, msgpack
}

// SimulationConfig holds the defaults for schedule and strategy runs.
type SimulationConfig struct {
	AdditionalPayment float64 `yaml:"additionalPayment,omitempty"`
}

// RemindersConfig configures the payment reminder job.
type RemindersConfig struct {
	Schedule      string `yaml:"schedule,omitempty"` // cron spec
	LookaheadDays int    `yaml:"lookaheadDays,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills every unset option with its default.
func (c *Configuration) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = constants.StorageBackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = constants.DefaultStorePath
	}
	if c.Storage.Address == "" {
		c.Storage.Address = constants.DefaultRedisAddress
	}
	if c.Storage.Codec == "" {
		c.Storage.Codec = constants.CodecJSON
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = constants.DefaultReminderSchedule
	}
	if c.Reminders.LookaheadDays == 0 {
		c.Reminders.LookaheadDays = constants.DefaultReminderLookaheadDays
	}
}

// SQLitePath is the database file used by the sqlite backend.
func (s StorageConfig) SQLitePath() string {
	return filepath.Join(s.Path, constants.DefaultSQLiteFile)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Storage.Backend {
	case constants.StorageBackendMemory, constants.StorageBackendFile, constants.StorageBackendSQLite,
		constants.StorageBackendPostgres, constants.StorageBackendRedis:
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown storage backend '%s'", c.Storage.Backend))
	}

	if c.Storage.Codec != constants.CodecJSON && c.Storage.Codec != constants.CodecMsgpack {
		warnings = append(warnings, fmt.Sprintf("Unknown storage codec '%s'", c.Storage.Codec))
	}

	if c.Storage.Backend == constants.StorageBackendPostgres && c.Storage.DSN == "" {
		warnings = append(warnings, "Storage backend 'postgres' requires a dsn")
	}

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	if c.Simulation.AdditionalPayment < 0 {
		warnings = append(warnings, fmt.Sprintf("Negative additional payment %.2f reduces every payment", c.Simulation.AdditionalPayment))
	}

	if c.Reminders.LookaheadDays < 0 {
		warnings = append(warnings, fmt.Sprintf("Reminder lookahead of %d days never matches a due date", c.Reminders.LookaheadDays))
	}

	for _, entry := range c.Loans {
		loan, err := entry.ToLoan(nil)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if err := validation.ValidateLoan(loan); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		warnings = append(warnings, validation.LoanWarnings(loan)...)
	}

	return warnings
}
