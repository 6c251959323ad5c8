package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mohamedkhairy/signal-sweep/pkg/indicator"
	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/signals"
)

// Config holds all configuration for a process embedding the sweep libraries
type Config struct {
	// Common
	Environment string
	LogLevel    string

	Sweep   SweepConfig
	Scanner ScannerConfig
}

// SweepConfig holds indicator sweep defaults
type SweepConfig struct {
	Parallelism int  // 0 = GOMAXPROCS
	MinPeriods  bool // Mask rows [0, window) of every result
	EWM         bool // Exponential instead of simple smoothing
	EWMAdjust   bool // Bias-corrected exponential weights
	StdDDOF     int  // Rolling std degrees of freedom correction
}

// ScannerConfig holds exit scanner defaults
type ScannerConfig struct {
	Parallelism int
	IsRelative  bool
	OnlyFirst   bool
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Sweep: SweepConfig{
			Parallelism: getEnvAsInt("SWEEP_PARALLELISM", 0),
			MinPeriods:  getEnvAsBool("SWEEP_MIN_PERIODS", true),
			EWM:         getEnvAsBool("SWEEP_EWM", false),
			EWMAdjust:   getEnvAsBool("SWEEP_EWM_ADJUST", false),
			StdDDOF:     getEnvAsInt("SWEEP_STD_DDOF", 0),
		},
		Scanner: ScannerConfig{
			Parallelism: getEnvAsInt("SCANNER_PARALLELISM", 0),
			IsRelative:  getEnvAsBool("STOP_IS_RELATIVE", true),
			OnlyFirst:   getEnvAsBool("STOP_ONLY_FIRST", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.Sweep.Parallelism < 0 {
		return fmt.Errorf("SWEEP_PARALLELISM must be non-negative, got %d", c.Sweep.Parallelism)
	}
	if c.Scanner.Parallelism < 0 {
		return fmt.Errorf("SCANNER_PARALLELISM must be non-negative, got %d", c.Scanner.Parallelism)
	}
	if c.Sweep.StdDDOF < 0 {
		return fmt.Errorf("SWEEP_STD_DDOF must be non-negative, got %d", c.Sweep.StdDDOF)
	}
	return nil
}

// IndicatorOptions converts the sweep section to indicator options
func (c *Config) IndicatorOptions() indicator.Options {
	return indicator.Options{
		Parallelism: c.Sweep.Parallelism,
		EWM:         c.Sweep.EWM,
		Adjust:      c.Sweep.EWMAdjust,
		MinPeriods:  c.Sweep.MinPeriods,
		StdDDOF:     c.Sweep.StdDDOF,
	}
}

// InitLogger initializes the global logger from LOG_LEVEL and ENVIRONMENT
func (c *Config) InitLogger() error {
	return logger.Init(c.LogLevel, c.Environment)
}

// ScannerOptions converts the scanner section to exit scanner options
func (c *Config) ScannerOptions() signals.Options {
	return signals.Options{
		Parallelism: c.Scanner.Parallelism,
		IsRelative:  c.Scanner.IsRelative,
		OnlyFirst:   c.Scanner.OnlyFirst,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
