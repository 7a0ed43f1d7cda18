package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name:    "missing redis addrs",
			mutate:  func(c *Config) { c.Database.Addrs = nil },
			wantErr: "database.addrs is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "valkey" },
			wantErr: `got "valkey"`,
		},
		{
			name:    "index name with spaces",
			mutate:  func(c *Config) { c.Index.Name = "my restaurants" },
			wantErr: "index.name",
		},
		{
			name: "max below min",
			mutate: func(c *Config) {
				c.Search.MinQueryLength = 5
				c.Search.MaxQueryLength = 4
			},
			wantErr: "search.max_query_length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_EmbeddedDriversNeedNoAddrs(t *testing.T) {
	for _, driver := range []string{DriverMemory, DriverBadger} {
		cfg := validConfig()
		cfg.Database.Driver = driver
		cfg.Database.Addrs = nil
		if err := cfg.Validate(); err != nil {
			t.Errorf("driver %s: unexpected error: %v", driver, err)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.Name != "restaurants" {
		t.Errorf("expected Index.Name=restaurants, got %q", cfg.Index.Name)
	}
	if cfg.Storage.KeyPrefix != "restodex:restaurants:" {
		t.Errorf("expected KeyPrefix='restodex:restaurants:', got %q", cfg.Storage.KeyPrefix)
	}

	limits := cfg.SearchLimits()
	if limits.MinQueryLength != 3 || limits.MaxQueryLength != 128 || limits.MaxResults != 10 || limits.ListLimit != 1000 {
		t.Errorf("unexpected search limits: %+v", limits)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverBadger, ReadinessTimeout: 15},
		Index:    IndexConfig{Name: "eats"},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Search:   SearchConfig{MinQueryLength: 2, MaxResults: 25},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverBadger {
		t.Errorf("expected Driver=badger, got %q", cfg.Database.Driver)
	}
	if cfg.Index.Name != "eats" {
		t.Errorf("expected Index.Name=eats, got %q", cfg.Index.Name)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Search.MinQueryLength != 2 || cfg.Search.MaxResults != 25 {
		t.Errorf("search overrides lost: %+v", cfg.Search)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RESTODEX_TEST_ADDR", "cache:6380")
	t.Setenv("RESTODEX_TEST_EMPTY", "")

	in := "a: ${RESTODEX_TEST_ADDR}\nb: ${RESTODEX_TEST_UNSET:-localhost:6379}\nc: ${RESTODEX_TEST_EMPTY:-fallback}\nd: ${RESTODEX_TEST_UNSET}\n"
	want := "a: cache:6380\nb: localhost:6379\nc: fallback\nd: \n"

	if got := string(expandEnvVars([]byte(in))); got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.Database.Addrs)
	}
	if cfg.Index.Name != "restaurants" {
		t.Errorf("index = %q", cfg.Index.Name)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
