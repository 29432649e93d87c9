// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// FileName is the config file name inside the config directory.
const FileName = "config.yaml"

// Config holds the modulus configuration
type Config struct {
	// Models maps each trained variant to its artifact path
	Models ModelsConfig `yaml:"models"`

	// Demo configures the placeholder variant
	Demo DemoConfig `yaml:"demo"`

	// Server configures `modulus serve`
	Server ServerConfig `yaml:"server"`

	// LogLevel is a logrus level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// ModelsConfig holds artifact paths. Relative paths resolve against the
// working directory.
type ModelsConfig struct {
	Base     string `yaml:"base"`
	Subgrade string `yaml:"subgrade"`
}

// DemoConfig holds demo variant settings.
type DemoConfig struct {
	// Gate is "truthy" (zero counts as missing) or "rules"
	Gate string `yaml:"gate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// DefaultConfig returns a Config with defaults and environment overrides applied
func DefaultConfig() *Config {
	c := &Config{
		Models: ModelsConfig{
			Base:     soil.Base().ModelFile,
			Subgrade: soil.Subgrade().ModelFile,
		},
		Demo:     DemoConfig{Gate: string(soil.GateTruthy)},
		Server:   ServerConfig{Port: 8080, RateLimitRPS: 5, RateLimitBurst: 10},
		LogLevel: "info",
	}
	c.applyEnv()
	return c
}

// applyEnv overrides fields from MODULUS_* environment variables.
func (c *Config) applyEnv() {
	c.Models.Base = getEnvOrDefault("MODULUS_BASE_MODEL", c.Models.Base)
	c.Models.Subgrade = getEnvOrDefault("MODULUS_SUBGRADE_MODEL", c.Models.Subgrade)
	c.Demo.Gate = getEnvOrDefault("MODULUS_DEMO_GATE", c.Demo.Gate)
	c.Server.Port = getEnvInt("MODULUS_PORT", c.Server.Port)
	c.LogLevel = getEnvOrDefault("MODULUS_LOG_LEVEL", c.LogLevel)
}

// Dir returns the configuration directory: $MODULUS_CONFIG_DIR, or
// ~/.modulus when a home directory exists.
func Dir() string {
	if dir := os.Getenv("MODULUS_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".modulus"
	}
	return filepath.Join(home, ".modulus")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Load reads the config at path. With an empty path the default location is
// used and a missing file yields the defaults; an explicit path must exist.
// Environment variables override values from the file.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return c, nil
		}
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst < 1 {
		return ErrInvalidRateLimit
	}
	if _, err := soil.ParseGateMode(c.Demo.Gate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGateMode, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	if c.Models.Base == "" || c.Models.Subgrade == "" {
		return ErrMissingModelPath
	}
	return nil
}

// ModelPath returns the artifact path for a variant, empty for variants
// without a trained model.
func (c *Config) ModelPath(variant string) string {
	switch variant {
	case soil.VariantBase:
		return c.Models.Base
	case soil.VariantSubgrade:
		return c.Models.Subgrade
	}
	return ""
}

// DemoGate returns the parsed demo gate mode.
func (c *Config) DemoGate() soil.GateMode {
	mode, err := soil.ParseGateMode(c.Demo.Gate)
	if err != nil {
		return soil.GateTruthy
	}
	return mode
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
