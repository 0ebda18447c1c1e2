package framework

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("address %s, want 0.0.0.0:8080", cfg.Address())
	}
	if cfg.Root != "public" {
		t.Errorf("root %q, want public", cfg.Root)
	}
	if cfg.Backlog != 128 || cfg.ReadBufferSize != 4096 {
		t.Errorf("unexpected backlog %d or read buffer %d", cfg.Backlog, cfg.ReadBufferSize)
	}
	if cfg.MaxConns != 0 || cfg.ReadTimeout != 0 || cfg.WriteTimeout != 0 {
		t.Error("connections and deadlines should be unbounded by default")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout %s, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.Logger == nil {
		t.Error("default logger should be set")
	}
	if cfg.Limits().Strict {
		t.Error("default limits should be lenient")
	}
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"ephemeral port", func(c *Config) { c.Port = 0 }, false},
		{"port too large", func(c *Config) { c.Port = 99999 }, true},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"negative backlog", func(c *Config) { c.Backlog = -1 }, true},
		{"negative max conns", func(c *Config) { c.MaxConns = -3 }, true},
		{"negative timeout", func(c *Config) { c.ReadTimeout = -time.Second }, true},
		{"negative shutdown timeout", func(c *Config) { c.ShutdownTimeout = -time.Second }, true},
		{"immediate shutdown", func(c *Config) { c.ShutdownTimeout = 0 }, false},
		{"empty root", func(c *Config) { c.Root = "" }, true},
		{"request size below buffer", func(c *Config) { c.MaxRequestSize = 100 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("expected an error")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruad.yaml")
	yaml := []byte(`
host: 127.0.0.1
port: 9090
root: /srv/www
max_conns: 64
read_timeout: 5s
write_timeout: 1m
shutdown_timeout: 250ms
strict: true
`)
	if err := ioutil.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadConfigFile(path, &cfg); err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.Address() != "127.0.0.1:9090" {
		t.Errorf("address %s", cfg.Address())
	}
	if cfg.Root != "/srv/www" || cfg.MaxConns != 64 || !cfg.Strict {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.ReadTimeout != 5*time.Second || cfg.WriteTimeout != time.Minute {
		t.Errorf("timeouts %s / %s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("shutdown timeout %s", cfg.ShutdownTimeout)
	}
	// keys absent from the file keep their defaults
	if cfg.Backlog != 128 || cfg.MaxRequestSize != 64<<10 {
		t.Errorf("defaults were lost: backlog %d, max request %d", cfg.Backlog, cfg.MaxRequestSize)
	}
	if !cfg.Limits().Strict {
		t.Error("strict should carry over to the parser limits")
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := ioutil.WriteFile(path, []byte("port: [not, a, number]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfigFile(path, &cfg); err == nil {
		t.Error("expected an error for a malformed file")
	}
}
