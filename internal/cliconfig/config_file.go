package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceURL      string `toml:"service_url"`
	Resource        string `toml:"resource"`
	AuthKey         string `toml:"auth_key"`
	Strategy        string `toml:"strategy"`
	CacheBackend    string `toml:"cache_backend"`
	CacheDir        string `toml:"cache_dir"`
	RedisURL        string `toml:"redis_url"`
	HTTPTimeout     string `toml:"http_timeout"`
	MirrorTimeout   string `toml:"mirror_timeout"`
	RefreshInterval string `toml:"refresh_interval"`
	MetricsAddr     string `toml:"metrics_addr"`
	LogLevel        string `toml:"log_level"`
	Once            *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.repokit/config.toml, or "" without a home
// directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".repokit", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("resource", fc.Resource, &cfg.Resource)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("cache", fc.CacheBackend, &cfg.CacheBackend)
	s.setString("cache-dir", fc.CacheDir, &cfg.CacheDir)
	s.setString("redis-url", fc.RedisURL, &cfg.RedisURL)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setStrategy("strategy", fc.Strategy, &cfg.Strategy); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("mirror-timeout", fc.MirrorTimeout, &cfg.MirrorTimeout); err != nil {
		return err
	}
	if err := s.setDuration("interval", fc.RefreshInterval, &cfg.RefreshInterval); err != nil {
		return err
	}

	s.setBool("once", fc.Once, &cfg.Once)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
