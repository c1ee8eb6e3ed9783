package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Redis:    RedisConfig{Addrs: []string{"localhost:6379"}, KeyPrefix: "claimsight:"},
		Postgres: PostgresConfig{DSN: "postgres://localhost:5432/claimsight"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"no redis addrs", func(c *Config) { c.Redis.Addrs = nil }},
		{"no postgres dsn", func(c *Config) { c.Postgres.DSN = "" }},
		{"key prefix without colon", func(c *Config) { c.Redis.KeyPrefix = "claimsight" }},
		{"overfetch too large", func(c *Config) { c.Suggest.OverfetchFactor = 11 }},
		{"unknown budget action", func(c *Config) { c.Embedding.Budget.Action = "block" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected write timeout 30s, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Redis.KeyPrefix != "claimsight:" {
		t.Errorf("expected default key prefix, got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected default model %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected default dimensions %d", cfg.Embedding.Dimensions)
	}
	if cfg.Suggest.OverfetchFactor != 3 {
		t.Errorf("expected overfetch factor 3, got %d", cfg.Suggest.OverfetchFactor)
	}
	if cfg.Suggest.CallTimeoutSec != 30 {
		t.Errorf("expected call timeout 30s, got %d", cfg.Suggest.CallTimeoutSec)
	}
	if d := time.Duration(cfg.Suggest.DebounceMS) * time.Millisecond; d != time.Second {
		t.Errorf("expected debounce 1s, got %v", d)
	}
	if cfg.Embedding.Budget.Action != "warn" {
		t.Errorf("expected default budget action warn, got %q", cfg.Embedding.Budget.Action)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CLAIMSIGHT_TEST_KEY", "secret")

	in := []byte("api_key: ${CLAIMSIGHT_TEST_KEY}\nmodel: ${CLAIMSIGHT_TEST_MODEL:-text-embedding-3-small}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: text-embedding-3-small\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
http:
  port: 9090
redis:
  addrs: ["localhost:6379"]
postgres:
  dsn: "postgres://localhost:5432/claimsight_test"
embedding:
  api_key: ${CLAIMSIGHT_TEST_API_KEY:-dummy}
suggest:
  overfetch_factor: 5
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "dummy" {
		t.Errorf("expected expanded default api key, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Suggest.OverfetchFactor != 5 {
		t.Errorf("expected overfetch factor 5, got %d", cfg.Suggest.OverfetchFactor)
	}
	if cfg.Suggest.DebounceMS != 1000 {
		t.Errorf("expected default debounce, got %d", cfg.Suggest.DebounceMS)
	}
}
