// Package config loads process settings for the httphmac command from
// the environment. A .env file in the working directory is read first;
// variables already set in the environment take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned when a setting fails validation.
var ErrInvalid = errors.New("config: invalid setting")

// Config holds the settings of the httphmac command.
type Config struct {
	Listen string // HTTPHMAC_LISTEN, address of the serve subcommand

	KeysFile string // HTTPHMAC_KEYS_FILE, YAML key file
	KeysDB   string // HTTPHMAC_KEYS_DB, SQLite key database
	NonceDB  string // HTTPHMAC_NONCE_DB, SQLite nonce database; empty keeps nonces in memory

	LogLevel string // HTTPHMAC_LOG_LEVEL

	ReplayWindow  time.Duration // HTTPHMAC_REPLAY_WINDOW, timestamp tolerance
	MinVersion    int           // HTTPHMAC_MIN_VERSION
	MaxVersion    int           // HTTPHMAC_MAX_VERSION
	SignResponses bool          // HTTPHMAC_SIGN_RESPONSES
	Realm         string        // HTTPHMAC_REALM, default realm for signed requests
	MaxBodyBytes  int64         // HTTPHMAC_MAX_BODY_BYTES, request body limit of the serve subcommand
}

// Load reads the configuration from the environment and an optional
// .env file, applies defaults and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return FromEnv()
}

// LoadFile is like Load but reads the given env files instead of .env.
// Missing files are an error.
func LoadFile(paths ...string) (*Config, error) {
	if err := godotenv.Load(paths...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	window, err := getEnvAsDuration("HTTPHMAC_REPLAY_WINDOW", 900*time.Second)
	if err != nil {
		return nil, err
	}

	minVersion, err := getEnvAsInt("HTTPHMAC_MIN_VERSION", 1)
	if err != nil {
		return nil, err
	}

	maxVersion, err := getEnvAsInt("HTTPHMAC_MAX_VERSION", 2)
	if err != nil {
		return nil, err
	}

	signResponses, err := getEnvAsBool("HTTPHMAC_SIGN_RESPONSES", true)
	if err != nil {
		return nil, err
	}

	maxBody, err := getEnvAsInt("HTTPHMAC_MAX_BODY_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Listen:        getEnv("HTTPHMAC_LISTEN", ":8080"),
		KeysFile:      getEnv("HTTPHMAC_KEYS_FILE", ""),
		KeysDB:        getEnv("HTTPHMAC_KEYS_DB", ""),
		NonceDB:       getEnv("HTTPHMAC_NONCE_DB", ""),
		LogLevel:      getEnv("HTTPHMAC_LOG_LEVEL", "info"),
		ReplayWindow:  window,
		MinVersion:    minVersion,
		MaxVersion:    maxVersion,
		SignResponses: signResponses,
		Realm:         getEnv("HTTPHMAC_REALM", "Acquia"),
		MaxBodyBytes:  int64(maxBody),
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.ReplayWindow <= 0 {
		return fmt.Errorf("%w: HTTPHMAC_REPLAY_WINDOW must be positive", ErrInvalid)
	}

	if c.MinVersion < 1 || c.MaxVersion < c.MinVersion {
		return fmt.Errorf("%w: version range %d-%d", ErrInvalid, c.MinVersion, c.MaxVersion)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: HTTPHMAC_MAX_BODY_BYTES must be positive", ErrInvalid)
	}

	if c.KeysFile != "" && c.KeysDB != "" {
		return fmt.Errorf("%w: HTTPHMAC_KEYS_FILE and HTTPHMAC_KEYS_DB are mutually exclusive", ErrInvalid)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, value)
	}

	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, value)
	}

	return b, nil
}

// getEnvAsDuration accepts a Go duration ("15m") or a number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalid, key, value)
	}

	return d, nil
}
