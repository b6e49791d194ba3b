// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultClientRetryMaxAttempts is the default number of retry attempts.
	DefaultClientRetryMaxAttempts = 3

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Prune     PruneConfig     `koanf:"prune"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains authentication settings. The API gateway validates
// tokens upstream; this service only reads the forwarded claim headers.
type AuthConfig struct {
	SubjectHeader string `koanf:"subject_header"`
	RolesHeader   string `koanf:"roles_header"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Tourism TourismConfig         `koanf:"tourism" validate:"required"`
	User    ServiceEndpointConfig `koanf:"user"    validate:"required"`
}

// TourismConfig contains the Korea Tourism API settings. An empty ServiceKey
// switches the service to the built-in mock provider.
type TourismConfig struct {
	BaseURL    string `koanf:"base_url"    validate:"required,url"`
	Name       string `koanf:"name"        validate:"required"`
	ServiceKey string `koanf:"service_key"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
}

// StorageConfig contains SQLite settings.
type StorageConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// CacheConfig contains the recommendation cache settings.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Path     string        `koanf:"path" validate:"required_if=Enabled true"`
	InMemory bool          `koanf:"in_memory"`
	TTL      time.Duration `koanf:"ttl"  validate:"omitempty,min=1s"`
}

// RecommendConfig contains recommendation tuning.
type RecommendConfig struct {
	TopKeywords int `koanf:"top_keywords" validate:"omitempty,min=1,max=10"`
}

// PruneConfig contains the stale-interest pruning schedule and thresholds.
type PruneConfig struct {
	Enabled  bool    `koanf:"enabled"`
	RunAt    string  `koanf:"run_at"`
	MinDays  int     `koanf:"min_days"  validate:"omitempty,min=1"`
	MaxScore float64 `koanf:"max_score" validate:"omitempty,min=0,max=100"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "insight-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "insight-service",
		"telemetry.sampling_rate": 1.0,

		"auth.subject_header": "X-User-ID",
		"auth.roles_header":   "X-User-Roles",

		"client.timeout":                         "10s",
		"client.retry.max_attempts":              DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":          "100ms",
		"client.retry.max_interval":              "5s",
		"client.retry.multiplier":                DefaultClientRetryMultiplier,
		"client.circuit_breaker.max_failures":    DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":         "30s",
		"client.circuit_breaker.half_open_limit": DefaultClientCircuitHalfOpenLimit,

		"services.tourism.base_url":    "https://apis.data.go.kr/B551011/KorService2",
		"services.tourism.name":        "korea-tourism",
		"services.tourism.service_key": "",
		"services.user.base_url":       "http://user-service:8080",
		"services.user.name":           "user-service",

		"storage.path": "./data/insight.db",

		"cache.enabled":   true,
		"cache.path":      "./data/cache",
		"cache.in_memory": false,
		"cache.ttl":       "1h",

		"recommend.top_keywords": 1,

		"prune.enabled":   true,
		"prune.run_at":    "03:00",
		"prune.min_days":  14,
		"prune.max_score": 1.0,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// loadFileIfExists loads a YAML config file if it exists. A missing file is
// not an error, parse and read failures are.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
