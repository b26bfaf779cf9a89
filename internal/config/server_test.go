package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/portal?sslmode=disable")
	t.Setenv("REMOTE_BASE_URL", "https://events.example.org/api")
	t.Setenv("EVENT_TOKEN_SECRET", "secret")
}

func TestLoadServerDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.RemoteCallTimeout != 30*time.Second {
		t.Fatalf("RemoteCallTimeout = %v, want 30s", cfg.RemoteCallTimeout)
	}
	if cfg.DefaultProfile != "default" {
		t.Fatalf("DefaultProfile = %q, want default", cfg.DefaultProfile)
	}
}

func TestLoadServerRequiredFields(t *testing.T) {
	tests := []string{"POSTGRES_DSN", "REMOTE_BASE_URL", "EVENT_TOKEN_SECRET"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "")
			if _, err := LoadServer(); err == nil {
				t.Fatalf("LoadServer() with empty %s expected error", name)
			}
		})
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	setRequired(t)
	t.Setenv("REMOTE_CALL_TIMEOUT", "5s")
	t.Setenv("EVENT_TOKEN_TTL", "24h")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.RemoteCallTimeout != 5*time.Second {
		t.Fatalf("RemoteCallTimeout = %v, want 5s", cfg.RemoteCallTimeout)
	}
	if cfg.EventTokenTTL != 24*time.Hour {
		t.Fatalf("EventTokenTTL = %v, want 24h", cfg.EventTokenTTL)
	}
}
