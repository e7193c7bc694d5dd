package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Port != defaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, defaultPort)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.TokenTTL)
	}
	if cfg.RateLimit.Max != 50 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %+v, want 50/1m", cfg.RateLimit)
	}
	if cfg.Project.PageSize != 10 || !cfg.Project.EnforceOwnership {
		t.Errorf("Project = %+v, want page size 10 with ownership enforced", cfg.Project)
	}
	if !strings.HasPrefix(cfg.DSN, "root:password@tcp(127.0.0.1:3306)/panotour?") {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true for default env")
	}
}

func TestParseOverrides(t *testing.T) {
	content := []byte(`
port: 9000
env: Production
token_ttl: 2d
admin_accounts: [" admin@example.com ", ""]
database:
  driver: postgres
  host: db
  user: tour
  password: secret
  name: tours
redis:
  url: cache:6379/2
rate_limit:
  max: 10
  window: 30s
project:
  page_size: 9
  enforce_ownership: false
media:
  tiler:
    command: ["python3", "generate.py", "{input}", "{output}"]
    timeout: 1m
`)
	cfg, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Port != 9000 || cfg.Env != "production" || cfg.IsDev() {
		t.Errorf("port/env = %d/%q", cfg.Port, cfg.Env)
	}
	if cfg.TokenTTL != 48*time.Hour {
		t.Errorf("TokenTTL = %v, want 48h", cfg.TokenTTL)
	}
	if !cfg.IsAdminAccount("ADMIN@example.com") || len(cfg.AdminAccounts) != 1 {
		t.Errorf("AdminAccounts = %v", cfg.AdminAccounts)
	}
	want := "host=db port=5432 user=tour password=secret dbname=tours sslmode=disable"
	if cfg.DSN != want {
		t.Errorf("DSN = %q, want %q", cfg.DSN, want)
	}
	if cfg.RedisURL != "redis://cache:6379/2" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.RateLimit.Max != 10 || cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Project.PageSize != 9 || cfg.Project.EnforceOwnership {
		t.Errorf("Project = %+v", cfg.Project)
	}
	if len(cfg.Media.Tiler.Command) != 4 || cfg.Media.Tiler.Timeout != time.Minute {
		t.Errorf("Tiler = %+v", cfg.Media.Tiler)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "unknown_key: 1"},
		{"bad port", "port: 70000"},
		{"bad driver", "database:\n  driver: oracle"},
		{"bad page size", "project:\n  page_size: -1"},
		{"bad duration", "token_ttl: soon"},
		{"incomplete s3", "media:\n  driver: s3\n  s3:\n    bucket: b"},
		{"kafka without brokers", "kafka:\n  enable: true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.content)
			}
		})
	}
}

func TestLoadWrapsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("port: 0\nenv: test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != "test" {
		t.Errorf("Env = %q, want test", cfg.Env)
	}

	_, err = Load(filepath.Join(dir, "missing.yml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yml") {
		t.Errorf("Load(missing) error = %v, want path in message", err)
	}
}
