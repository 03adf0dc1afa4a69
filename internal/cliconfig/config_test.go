package cliconfig

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/pkg/repository"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Strategy != repository.RemoteWithLocalCache {
		t.Errorf("Strategy = %v, want remote-with-local-cache", cfg.Strategy)
	}
	if cfg.CacheBackend != BackendFile {
		t.Errorf("CacheBackend = %q, want %q", cfg.CacheBackend, BackendFile)
	}
	if cfg.MirrorTimeout != repository.DefaultMirrorTimeout {
		t.Errorf("MirrorTimeout = %v, want %v", cfg.MirrorTimeout, repository.DefaultMirrorTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.CacheDir == "" {
		t.Error("Validate should fill CacheDir")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"trailing slash trimmed", func(c *Config) { c.ServiceURL = "https://api.example.com/v1/" }, ""},
		{"missing url", func(c *Config) { c.ServiceURL = "" }, "service-url is required"},
		{"local only without url", func(c *Config) { c.ServiceURL = ""; c.Strategy = repository.LocalOnly }, ""},
		{"relative url", func(c *Config) { c.ServiceURL = "api/v1" }, "absolute http(s) URL"},
		{"bad scheme", func(c *Config) { c.ServiceURL = "ftp://example.com" }, "absolute http(s) URL"},
		{"invalid strategy", func(c *Config) { c.Strategy = repository.Strategy(42) }, "not supported"},
		{"empty resource", func(c *Config) { c.Resource = "" }, "resource is required"},
		{"unknown backend", func(c *Config) { c.CacheBackend = "sqlite" }, "cache backend"},
		{"redis without url", func(c *Config) { c.CacheBackend = BackendRedis; c.RedisURL = "" }, "redis-url is required"},
		{"zero http timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http timeout"},
		{"negative mirror timeout", func(c *Config) { c.MirrorTimeout = -time.Second }, "mirror timeout"},
		{"zero mirror timeout", func(c *Config) { c.MirrorTimeout = 0 }, ""},
		{"zero interval", func(c *Config) { c.RefreshInterval = 0 }, "refresh interval"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CacheDir = t.TempDir()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_TrimsServiceURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceURL = " https://api.example.com/v1// "

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.ServiceURL != "https://api.example.com/v1" {
		t.Errorf("ServiceURL = %q", cfg.ServiceURL)
	}
}

func TestConfigSetter_RespectsChangedFlags(t *testing.T) {
	s := newConfigSetter(map[string]bool{"resource": true, "interval": true, "strategy": true})

	resource := "notes"
	s.setString("resource", "tasks", &resource)
	if resource != "notes" {
		t.Errorf("resource = %q, changed flag should win", resource)
	}

	interval := time.Minute
	if err := s.setDuration("interval", "not-a-duration", &interval); err != nil {
		t.Errorf("changed flag should skip parsing, got %v", err)
	}

	st := repository.RemoteOnly
	if err := s.setStrategy("strategy", "local-only", &st); err != nil || st != repository.RemoteOnly {
		t.Errorf("strategy = %v, err = %v", st, err)
	}
}

func TestConfigSetter_BoolFromString(t *testing.T) {
	tests := []struct {
		value string
		start bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"yes", true, false},
		{"", true, true},
	}

	for _, tt := range tests {
		s := newConfigSetter(nil)
		got := tt.start
		s.setBoolFromString("once", tt.value, &got)
		if got != tt.want {
			t.Errorf("setBoolFromString(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
