package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for compass.
// Values are populated from .compass.yaml, COMPASS_* env vars, and CLI flags.
type Config struct {
	DBPath              string `mapstructure:"db_path"`
	CurriculumDir       string `mapstructure:"curriculum_dir"`
	RecommendationLimit int    `mapstructure:"recommendation_limit"`
	DefaultEstimate     string `mapstructure:"default_estimate"`
	TelemetryPath       string `mapstructure:"telemetry_path"`
	Verbose             bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db_path", "compass.db")
	viper.SetDefault("curriculum_dir", "curricula/venture")
	viper.SetDefault("recommendation_limit", 5)
	viper.SetDefault("default_estimate", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if strings.TrimSpace(c.CurriculumDir) == "" {
		errs = append(errs, errors.New("curriculum_dir must not be empty"))
	}
	if c.RecommendationLimit < 1 {
		errs = append(errs, fmt.Errorf("recommendation_limit must be at least 1, got %d", c.RecommendationLimit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
