package config

import (
	"testing"
	"time"
)

func TestDefaultFromEnvDefaults(t *testing.T) {
	t.Setenv("DEEPWIKI_API_HOST", "")
	t.Setenv("DEEPWIKI_MCP_PORT", "")
	t.Setenv("DEEPWIKI_HTTP_TIMEOUT", "")

	cfg := DefaultFromEnv()
	if cfg.UpstreamURL != DefaultUpstreamURL {
		t.Fatalf("UpstreamURL = %q, want %q", cfg.UpstreamURL, DefaultUpstreamURL)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Fatalf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, DefaultUpstreamTimeout)
	}
}

func TestDefaultFromEnvOverrides(t *testing.T) {
	t.Setenv("DEEPWIKI_API_HOST", "http://deepwiki:9781/")
	t.Setenv("DEEPWIKI_MCP_PORT", "9999")
	t.Setenv("DEEPWIKI_MCP_VERBOSE", "true")

	cfg := DefaultFromEnv()
	if cfg.UpstreamURL != "http://deepwiki:9781" {
		t.Fatalf("UpstreamURL = %q, want trailing slash stripped", cfg.UpstreamURL)
	}
	if cfg.Port != 9999 {
		t.Fatalf("Port = %d, want 9999", cfg.Port)
	}
	if !cfg.Verbose {
		t.Fatal("Verbose = false, want true")
	}
}

func TestEnvDurationForms(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", DefaultUpstreamTimeout},
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"300", 300 * time.Second},
		{"garbage", DefaultUpstreamTimeout},
		{"-5", DefaultUpstreamTimeout},
	}
	for _, tt := range tests {
		t.Setenv("DEEPWIKI_HTTP_TIMEOUT", tt.value)
		if got := envDuration("DEEPWIKI_HTTP_TIMEOUT", DefaultUpstreamTimeout); got != tt.want {
			t.Errorf("envDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
