package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GEMINI_MODEL", "OUTPUT_DIR", "CORS_ALLOWED_ORIGINS", "GEMINI_TIMEOUT_SECONDS", "RATE_LIMIT_PER_MINUTE", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8000")
	}
	if cfg.GeminiModel != DefaultGeminiModel {
		t.Fatalf("GeminiModel = %q, want %q", cfg.GeminiModel, DefaultGeminiModel)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Fatalf("OutputDir = %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.GeminiTimeout != 120*time.Second {
		t.Fatalf("GeminiTimeout = %s, want 2m0s", cfg.GeminiTimeout)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d, want 30", cfg.RateLimitPerMin)
	}
	if err := cfg.RequireGeminiKey(); err == nil {
		t.Fatalf("RequireGeminiKey should fail without GEMINI_API_KEY")
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", " secret ")
	t.Setenv("OUTPUT_DIR", "/tmp/renders")
	t.Setenv("PROMPTS_DIR", "/etc/prompts")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "300")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Fatalf("GeminiAPIKey = %q, want %q", cfg.GeminiAPIKey, "secret")
	}
	if err := cfg.RequireGeminiKey(); err != nil {
		t.Fatalf("RequireGeminiKey returned error: %v", err)
	}
	if cfg.OutputDir != "/tmp/renders" || cfg.PromptsDir != "/etc/prompts" {
		t.Fatalf("dirs mismatch: output=%q prompts=%q", cfg.OutputDir, cfg.PromptsDir)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
	if cfg.HTTPWriteTimeout != 300*time.Second {
		t.Fatalf("HTTPWriteTimeout = %s, want 5m0s", cfg.HTTPWriteTimeout)
	}
	if cfg.RateLimitPerMin != 0 {
		t.Fatalf("RateLimitPerMin = %d, want 0", cfg.RateLimitPerMin)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero timeout", key: "GEMINI_TIMEOUT_SECONDS", val: "0"},
		{name: "negative upload", key: "MAX_UPLOAD_BYTES", val: "-1"},
		{name: "negative rate", key: "RATE_LIMIT_PER_MINUTE", val: "-5"},
		{name: "non-integer timeout", key: "GEMINI_TIMEOUT_SECONDS", val: "abc"},
		{name: "non-integer rate", key: "RATE_LIMIT_PER_MINUTE", val: "30/min"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig should fail for %s=%s", tc.key, tc.val)
			}
		})
	}
}
