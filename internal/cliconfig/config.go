package cliconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

// DefaultServiceURL is the default notes service endpoint.
const DefaultServiceURL = "http://localhost:8080/v1"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var backends = []string{BackendFile, BackendMemory, BackendRedis}

// Config holds CLI configuration for repokit.
type Config struct {
	ServiceURL string
	Resource   string
	AuthKey    string

	Strategy repository.Strategy

	CacheBackend string
	CacheDir     string
	RedisURL     string

	HTTPTimeout     time.Duration
	MirrorTimeout   time.Duration
	RefreshInterval time.Duration

	MetricsAddr string
	LogLevel    string
	Once        bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceURL:      DefaultServiceURL,
		Resource:        "notes",
		Strategy:        repository.RemoteWithLocalCache,
		CacheBackend:    BackendFile,
		RedisURL:        "redis://localhost:6379/0",
		HTTPTimeout:     15 * time.Second,
		MirrorTimeout:   repository.DefaultMirrorTimeout,
		RefreshInterval: time.Minute,
		LogLevel:        "info",
	}
}

// Validate checks the configuration and fills derived defaults. Errors wrap
// domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if !c.Strategy.Valid() {
		return invalid("strategy %s is not supported", c.Strategy)
	}

	c.ServiceURL = strings.TrimRight(strings.TrimSpace(c.ServiceURL), "/")
	if c.Strategy != repository.LocalOnly {
		if c.ServiceURL == "" {
			return invalid("service-url is required for strategy %s", c.Strategy)
		}
		u, err := url.Parse(c.ServiceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("service-url %q must be an absolute http(s) URL", c.ServiceURL)
		}
	}
	if c.Resource == "" {
		return invalid("resource is required")
	}

	if !slices.Contains(backends, c.CacheBackend) {
		return invalid("cache backend %q must be one of %s", c.CacheBackend, strings.Join(backends, ", "))
	}
	if c.CacheBackend == BackendRedis && c.RedisURL == "" {
		return invalid("redis-url is required with the redis cache backend")
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}

	if c.HTTPTimeout <= 0 {
		return invalid("http timeout must be positive")
	}
	if c.MirrorTimeout < 0 {
		return invalid("mirror timeout must not be negative")
	}
	if c.RefreshInterval <= 0 {
		return invalid("refresh interval must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func defaultCacheDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".repokit", "cache")
	}
	return filepath.Join(os.TempDir(), "repokit-cache")
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setStrategy parses and sets a strategy name if flag not changed.
func (s *configSetter) setStrategy(flag, value string, dst *repository.Strategy) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	st, err := repository.ParseStrategy(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = st
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
