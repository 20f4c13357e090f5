// Package config provides centralized configuration for the OrangeHRM suite.
// It loads an optional .env file, reads environment variables, applies CLI
// overrides, validates the result and provides sensible defaults.
//
// Environment variables are the primary source; a .env file only fills in
// variables that are not already set in the process environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL     = "https://opensource-demo.orangehrmlive.com"
	defaultFixturesDir = "testdata"
	defaultAWSRegion   = "us-east-1"
)

// Supported browser engines.
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// Config holds all suite configuration.
type Config struct {
	// Target application
	BaseURL string

	// Browser
	Browser  string // chromium, firefox or webkit
	Headless bool
	SlowMo   time.Duration

	// Fixtures
	FixturesDir string

	// Waits
	DefaultTimeout time.Duration // hard visibility waits and navigation
	ToastTimeout   time.Duration // soft toast/validation polls
	ShortTimeout   time.Duration // optional fields that may not be rendered
	PollInterval   time.Duration

	// Runner
	Workers int
	Tags    []string

	// Artifacts
	ArtifactsDir       string
	ArtifactsBucket    string // S3 bucket for screenshots; empty keeps them local
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY

	LogLevel string
}

// Overrides carries CLI flag values. Zero values leave the environment
// setting in place.
type Overrides struct {
	EnvFile  string
	BaseURL  string
	Browser  string
	Headed   bool
	Workers  int
	Tags     []string
	LogLevel string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// LoadConfig loads configuration from the env file, environment variables
// and CLI overrides, in increasing order of precedence.
func LoadConfig(o Overrides) (*Config, error) {
	if err := loadEnvFile(o.EnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.BaseURL = strings.TrimRight(getEnvOrDefault("HRM_BASE_URL", DefaultBaseURL), "/")
	cfg.Browser = strings.ToLower(getEnvOrDefault("HRM_BROWSER", BrowserChromium))
	cfg.Headless = parseBoolOrDefault("HRM_HEADLESS", true)
	cfg.SlowMo = parseDurationOrDefault("HRM_SLOW_MO", 0)

	cfg.FixturesDir = getEnvOrDefault("HRM_FIXTURES_DIR", defaultFixturesDir)

	cfg.DefaultTimeout = parseDurationOrDefault("HRM_DEFAULT_TIMEOUT", 10*time.Second)
	cfg.ToastTimeout = parseDurationOrDefault("HRM_TOAST_TIMEOUT", 15*time.Second)
	cfg.ShortTimeout = parseDurationOrDefault("HRM_SHORT_TIMEOUT", 2*time.Second)
	cfg.PollInterval = parseDurationOrDefault("HRM_POLL_INTERVAL", 250*time.Millisecond)

	cfg.Workers = parseIntOrDefault("HRM_WORKERS", 2)
	cfg.Tags = splitList(os.Getenv("HRM_TAGS"))

	cfg.ArtifactsDir = getEnvOrDefault("HRM_ARTIFACTS_DIR", "artifacts")
	cfg.ArtifactsBucket = getEnvOrDefault("HRM_ARTIFACTS_BUCKET", "")
	cfg.AWSEndpointS3 = getEnvOrDefault("AWS_ENDPOINT_URL_S3", "")
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultAWSRegion)
	cfg.AWSAccessKeyID = getEnvOrDefault("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnvOrDefault("AWS_SECRET_ACCESS_KEY", "")

	cfg.LogLevel = getEnvOrDefault("HRM_LOG_LEVEL", "info")

	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.BaseURL != "" {
		c.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	}
	if o.Browser != "" {
		c.Browser = strings.ToLower(strings.TrimSpace(o.Browser))
	}
	if o.Headed {
		c.Headless = false
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if len(o.Tags) > 0 {
		c.Tags = o.Tags
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.BaseURL == "" {
		errs = append(errs, "HRM_BASE_URL must not be empty")
	} else if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, "HRM_BASE_URL must start with http:// or https://")
	}

	switch c.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		errs = append(errs, fmt.Sprintf("HRM_BROWSER must be one of chromium, firefox, webkit (got %q)", c.Browser))
	}

	if c.FixturesDir == "" {
		errs = append(errs, "HRM_FIXTURES_DIR must not be empty")
	}

	if c.DefaultTimeout <= 0 {
		errs = append(errs, "HRM_DEFAULT_TIMEOUT must be positive")
	}
	if c.ToastTimeout <= 0 {
		errs = append(errs, "HRM_TOAST_TIMEOUT must be positive")
	}
	if c.ShortTimeout <= 0 {
		errs = append(errs, "HRM_SHORT_TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		errs = append(errs, "HRM_POLL_INTERVAL must be positive")
	} else if c.PollInterval >= c.ToastTimeout {
		errs = append(errs, "HRM_POLL_INTERVAL must be shorter than HRM_TOAST_TIMEOUT")
	}

	if c.Workers <= 0 {
		errs = append(errs, "HRM_WORKERS must be positive")
	}

	if c.ArtifactsBucket != "" {
		if c.AWSAccessKeyID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required when HRM_ARTIFACTS_BUCKET is set")
		}
		if c.AWSSecretAccessKey == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required when HRM_ARTIFACTS_BUCKET is set")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// UploadsArtifacts returns true if screenshots are also pushed to S3.
func (c *Config) UploadsArtifacts() bool {
	return c.ArtifactsBucket != ""
}

// PrintSummary prints a human-readable summary of the configuration.
func (c *Config) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "OrangeHRM suite")
	fmt.Fprintf(w, "  Target:    %s\n", c.BaseURL)
	mode := "headless"
	if !c.Headless {
		mode = "headed"
	}
	fmt.Fprintf(w, "  Browser:   %s (%s)\n", c.Browser, mode)
	fmt.Fprintf(w, "  Fixtures:  %s\n", c.FixturesDir)
	fmt.Fprintf(w, "  Workers:   %d\n", c.Workers)
	if len(c.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:      %s\n", strings.Join(c.Tags, ", "))
	}
	if c.UploadsArtifacts() {
		fmt.Fprintf(w, "  Artifacts: %s + s3://%s\n", c.ArtifactsDir, c.ArtifactsBucket)
	} else {
		fmt.Fprintf(w, "  Artifacts: %s\n", c.ArtifactsDir)
	}
	fmt.Fprintln(w, "")
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MustLoadConfig loads configuration and panics if validation fails.
func MustLoadConfig(o Overrides) *Config {
	cfg, err := LoadConfig(o)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
