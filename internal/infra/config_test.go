package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SHARE_UPLOAD_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HasDatabase() {
		t.Fatalf("expected no database by default")
	}
	if cfg.ShareUploadURL != "https://upload.hyperzod.dev/public-upload" {
		t.Fatalf("ShareUploadURL mismatch: %q", cfg.ShareUploadURL)
	}
	if cfg.OpenAIImageModel != "gpt-image-1" {
		t.Fatalf("OpenAIImageModel mismatch: %q", cfg.OpenAIImageModel)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.GenerationTimeout != 150*time.Second {
		t.Fatalf("GenerationTimeout mismatch: %s", cfg.GenerationTimeout)
	}
	if cfg.MaxUploadBytes != 25<<20 {
		t.Fatalf("MaxUploadBytes mismatch: %d", cfg.MaxUploadBytes)
	}
}

func TestLoadConfigParsesOriginsAndDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", " postgres://example ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studio.example.com, ,http://localhost:3000 ")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.HasDatabase() || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("DatabaseURL mismatch: %q", cfg.DatabaseURL)
	}
	expected := []string{"https://studio.example.com", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsGenerationTimeoutPastWriteTimeout(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "200")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "120")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when generation timeout exceeds write timeout")
	}
}

func TestLoadConfigIgnoresMalformedInts(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d, want 30", cfg.RateLimitPerMin)
	}
}
