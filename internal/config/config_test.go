package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codeshift.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := Default()
	if cfg.Server.Port != def.Server.Port {
		t.Errorf("expected default port %s, got %s", def.Server.Port, cfg.Server.Port)
	}
	if cfg.Service.Endpoints.Unified != "/unified" {
		t.Errorf("unexpected unified endpoint %q", cfg.Service.Endpoints.Unified)
	}
	if cfg.Transform.Backend != BackendHTTP {
		t.Errorf("expected http backend, got %q", cfg.Transform.Backend)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
service:
  base_url: http://ai:8000
  timeout: 45s
transform:
  concurrency: 4
test:
  deploy: true
ingest:
  watch_dir: /srv/uploads
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Service.BaseURL != "http://ai:8000" {
		t.Errorf("unexpected base url %q", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.Service.Timeout)
	}
	// не заданные в файле endpoints остаются по умолчанию
	if cfg.Service.Endpoints.Deploy != "/deploy" {
		t.Errorf("default endpoint lost: %q", cfg.Service.Endpoints.Deploy)
	}
	if cfg.Transform.Concurrency != 4 || !cfg.Test.Deploy {
		t.Errorf("unexpected transform/test config: %+v %+v", cfg.Transform, cfg.Test)
	}
	if cfg.Ingest.WatchDir != "/srv/uploads" {
		t.Errorf("unexpected watch dir %q", cfg.Ingest.WatchDir)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	t.Setenv("API_PORT", "7070")
	t.Setenv("SERVICE_URL", "http://env:1")
	t.Setenv("DB_URL", "postgres://localhost/codeshift")
	t.Setenv("TRANSFORM_CONCURRENCY", "3")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("env should override file, got %s", cfg.Server.Port)
	}
	if cfg.Service.BaseURL != "http://env:1" {
		t.Errorf("unexpected base url %q", cfg.Service.BaseURL)
	}
	if cfg.Database.URL != "postgres://localhost/codeshift" {
		t.Errorf("unexpected db url %q", cfg.Database.URL)
	}
	if cfg.Transform.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", cfg.Transform.Concurrency)
	}
}

func TestLoadFile_InvalidEnvNumber(t *testing.T) {
	t.Setenv("TRANSFORM_CONCURRENCY", "many")

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"unknown backend", func(c *Config) { c.Transform.Backend = "grpc" }, ErrUnknownBackend},
		{"llm unknown type", func(c *Config) {
			c.Transform.Backend = BackendLLM
			c.LLM.Type = "bard"
			c.LLM.Model = "x"
		}, ErrUnknownModelType},
		{"llm without model", func(c *Config) {
			c.Transform.Backend = BackendLLM
			c.LLM.Type = "ollama"
		}, ErrInvalidValue},
		{"llm ok", func(c *Config) {
			c.Transform.Backend = BackendLLM
			c.LLM.Type = "claude"
			c.LLM.Model = "claude-sonnet"
		}, nil},
		{"negative concurrency", func(c *Config) { c.Transform.Concurrency = -1 }, ErrInvalidValue},
		{"empty service url", func(c *Config) { c.Service.BaseURL = "" }, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
