package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/lectern/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.App.HTTP.Port = 0 }, "app: Port"},
		{"port too large", func(c *Config) { c.App.HTTP.Port = 70000 }, "app: Port"},
		{"missing base url", func(c *Config) { c.Archive.BaseURL = "" }, "archive: BaseURL"},
		{"relative base url", func(c *Config) { c.Archive.BaseURL = "/api" }, "must be an http or https URL"},
		{"base url without host", func(c *Config) { c.Archive.BaseURL = "http://" }, "must include a host"},
		{"zero timeout", func(c *Config) { c.Archive.Timeout = 0 }, "archive: Timeout"},
		{"page size", func(c *Config) { c.Reader.DefaultPageSize = 7 }, "reader: DefaultPageSize"},
		{"negative snippet", func(c *Config) { c.Reader.SnippetLength = -1 }, "reader: SnippetLength"},
		{"bad origin", func(c *Config) { c.CORS.AllowedOrigins = []string{"*", "reader.example"} }, "cors: AllowedOrigins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("LECTERN_ARCHIVE_URL", "https://archive.example/api")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
archive:
  base_url: ${LECTERN_ARCHIVE_URL}
  timeout: 3s
reader:
  default_page_size: 20
cors:
  allowed_origins:
    - https://reader.example
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("Address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Archive.BaseURL != "https://archive.example/api" {
		t.Errorf("BaseURL = %q, want the expanded variable", cfg.Archive.BaseURL)
	}
	if cfg.Archive.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Archive.Timeout)
	}
	if cfg.Archive.UserAgent == "" {
		t.Error("UserAgent default was lost")
	}
	if cfg.Reader.DefaultPageSize != 20 || cfg.Reader.SnippetLength != 300 {
		t.Errorf("Reader = %+v", cfg.Reader)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestConfig_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("reader:\n  default_page_size: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := pkgconfig.Load(path, NewDefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("Load error = %v, want a validation failure", err)
	}
}
