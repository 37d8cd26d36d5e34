package config

import (
	"os"
	"strconv"
	"time"

	"firesens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Sampling   SamplingConfig
	Analysis   AnalysisConfig
	Evaluation EvaluationConfig
	Paths      PathConfig
	Logging    LoggingConfig
}

// SamplingConfig holds quasi-random sampling settings
type SamplingConfig struct {
	Count       int
	Seed        int64
	SecondOrder bool
}

// AnalysisConfig holds Sobol estimator settings
type AnalysisConfig struct {
	BootstrapResamples int
	ConfLevel          float64
}

// EvaluationConfig holds model evaluation settings
type EvaluationConfig struct {
	Workers int
	ValProp float64
	Timeout time.Duration // zero means no deadline
}

// PathConfig holds file system paths
type PathConfig struct {
	BoundsFile string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Sampling:   *loadSamplingConfig(),
		Analysis:   *loadAnalysisConfig(),
		Evaluation: *loadEvaluationConfig(),
		Paths:      *loadPathConfig(),
		Logging:    *loadLoggingConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadSamplingConfig() *SamplingConfig {
	return &SamplingConfig{
		Count:       getEnvIntOrDefault("SAMPLE_COUNT", 1024),
		Seed:        getEnvInt64OrDefault("SAMPLE_SEED", 42),
		SecondOrder: getEnvBoolOrDefault("SECOND_ORDER", true),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		BootstrapResamples: getEnvIntOrDefault("BOOTSTRAP_RESAMPLES", 100),
		ConfLevel:          getEnvFloatOrDefault("CONF_LEVEL", 0.95),
	}
}

func loadEvaluationConfig() *EvaluationConfig {
	return &EvaluationConfig{
		Workers: getEnvIntOrDefault("EVAL_WORKERS", 1),
		ValProp: getEnvFloatOrDefault("VAL_PROP", 0),
		Timeout: getEnvDurationOrDefault("EVAL_TIMEOUT", 0),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		BoundsFile: getEnvOrDefault("BOUNDS_FILE", ""),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
}

// Validate checks value ranges. The CLI calls it again after applying flags.
func (c *Config) Validate() error {
	if c.Sampling.Count < 2 {
		return errors.ConfigInvalid("SAMPLE_COUNT must be at least 2")
	}
	if c.Analysis.BootstrapResamples < 2 {
		return errors.ConfigInvalid("BOOTSTRAP_RESAMPLES must be at least 2")
	}
	if c.Analysis.ConfLevel <= 0 || c.Analysis.ConfLevel >= 1 {
		return errors.ConfigInvalid("CONF_LEVEL must be in (0,1)")
	}
	if c.Evaluation.Workers < 1 {
		return errors.ConfigInvalid("EVAL_WORKERS must be at least 1")
	}
	if c.Evaluation.ValProp < 0 || c.Evaluation.ValProp >= 1 {
		return errors.ConfigInvalid("VAL_PROP must be in [0,1)")
	}
	if c.Evaluation.Timeout < 0 {
		return errors.ConfigInvalid("EVAL_TIMEOUT must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
