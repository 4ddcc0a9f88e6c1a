package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CALLINSIGHTS_PIPELINE_TEAM_LEAD.
const EnvPrefix = "CALLINSIGHTS"

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PipelineConfig holds the knobs of the transformation pipeline.
type PipelineConfig struct {
	// OutlierAgent is excluded from the KPI threshold baseline.
	OutlierAgent string `yaml:"outlier_agent" envconfig:"OUTLIER_AGENT"`
	// TeamLead is excluded from every comparative table.
	TeamLead       string            `yaml:"team_lead" envconfig:"TEAM_LEAD"`
	ThresholdRatio float64           `yaml:"threshold_ratio" envconfig:"THRESHOLD_RATIO" validate:"gt=0,lte=1"`
	ThresholdScope string            `yaml:"threshold_scope" envconfig:"THRESHOLD_SCOPE" validate:"oneof=dataset filtered"`
	TopReasons     int               `yaml:"top_reasons" envconfig:"TOP_REASONS" validate:"gte=1,lte=100"`
	Timezone       string            `yaml:"timezone" envconfig:"TIMEZONE" validate:"required,timezone"`
	ColumnRenames  map[string]string `yaml:"column_renames" envconfig:"COLUMN_RENAMES"`
	ReasonSynonyms map[string]string `yaml:"reason_synonyms" envconfig:"REASON_SYNONYMS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=console json"`
}

// Default returns the configuration used when nothing else is supplied.
// No agents are excluded by default.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ThresholdRatio: 0.75,
			ThresholdScope: "dataset",
			TopReasons:     10,
			Timezone:       "UTC",
		},
		Server: ServerConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and CALLINSIGHTS_* variables,
// in that order, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Location resolves the pipeline time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Pipeline.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Pipeline.Timezone, err)
	}
	return loc, nil
}
