package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvConfig applies REPOKIT_* environment variables to cfg, skipping
// values whose flag was set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("REPOKIT_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("resource", os.Getenv("REPOKIT_RESOURCE"), &cfg.Resource)
	s.setString("auth-key", os.Getenv("REPOKIT_AUTH_KEY"), &cfg.AuthKey)
	s.setString("cache", os.Getenv("REPOKIT_CACHE_BACKEND"), &cfg.CacheBackend)
	s.setString("cache-dir", os.Getenv("REPOKIT_CACHE_DIR"), &cfg.CacheDir)
	s.setString("redis-url", os.Getenv("REPOKIT_REDIS_URL"), &cfg.RedisURL)
	s.setString("metrics-addr", os.Getenv("REPOKIT_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("REPOKIT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setStrategy("strategy", os.Getenv("REPOKIT_STRATEGY"), &cfg.Strategy); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("REPOKIT_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("mirror-timeout", os.Getenv("REPOKIT_MIRROR_TIMEOUT"), &cfg.MirrorTimeout); err != nil {
		return err
	}
	if err := s.setDuration("interval", os.Getenv("REPOKIT_REFRESH_INTERVAL"), &cfg.RefreshInterval); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("REPOKIT_ONCE"), &cfg.Once)
	return nil
}
