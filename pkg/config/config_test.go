package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONFIG_NAME", "lectern")
	path := writeFile(t, "name: ${TEST_CONFIG_NAME}\n")

	cfg := testConfig{Limit: 5}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "lectern" || cfg.Limit != 5 {
		t.Errorf("cfg = %+v, want name from env and limit kept", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.yaml"), "failed to read config file"},
		{"bad yaml", writeFile(t, "name: [unterminated\n"), "failed to parse config file"},
		{"invalid", writeFile(t, "limit: -1\n"), "config validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg testConfig
			err := Load(tt.path, &cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := testConfig{Name: "default"}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if err != nil || read {
		t.Fatalf("LoadOptional(missing) = %v, %v; want false, nil", read, err)
	}
	if cfg.Name != "default" {
		t.Errorf("defaults changed: %+v", cfg)
	}

	cfg = testConfig{Limit: -1}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Error("invalid defaults passed validation")
	}

	cfg = testConfig{}
	read, err = LoadOptional(writeFile(t, "name: file\n"), &cfg)
	if err != nil || !read || cfg.Name != "file" {
		t.Errorf("LoadOptional(file) = %v, %v, cfg %+v", read, err, cfg)
	}
}
