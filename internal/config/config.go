package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbols []string `yaml:"symbols" envconfig:"SYMBOLS" validate:"required,min=1,dive,required"`
	Data    struct {
		Dir string `yaml:"dir" envconfig:"DATA_DIR" validate:"required"`
	} `yaml:"data"`
	Models struct {
		Dir string `yaml:"dir" envconfig:"MODELS_DIR" validate:"required"`
	} `yaml:"models"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron" envconfig:"CRON_SCHEDULE" validate:"required"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr" envconfig:"METRICS_ADDR"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level" envconfig:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	} `yaml:"log"`
	Features struct {
		LabelThreshold float64 `yaml:"label_threshold" envconfig:"LABEL_THRESHOLD" validate:"gte=0,lt=1"`
	} `yaml:"features"`
}

// Load reads config from a YAML file, then a .env file in the working
// directory, then environment variable overrides, and finally fills defaults.
// A missing YAML or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"AAPL"}
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data/prices"
	}
	if c.Models.Dir == "" {
		c.Models.Dir = "data/models"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trendscope.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 22 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Features.LabelThreshold == 0 {
		c.Features.LabelThreshold = 0.005
	}
}

var validate = validator.New()

// Validate checks the configured values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
