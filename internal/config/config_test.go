package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Unexpected address: %s", cfg.ServerAddress())
	}
	if cfg.AnalysisProvider != ProviderGemini {
		t.Errorf("Expected gemini provider, got %s", cfg.AnalysisProvider)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Unexpected model: %s", cfg.GeminiModel)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Unexpected request timeout: %s", cfg.RequestTimeout)
	}
	if cfg.RetainImageOnFailure {
		t.Error("Expected images to be discarded on failure by default")
	}
	if cfg.AnalysisWorkers <= 0 {
		t.Errorf("Expected positive worker count, got %d", cfg.AnalysisWorkers)
	}
	if cfg.AzureEnabled() {
		t.Error("Azure should be disabled without credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("ANALYSIS_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://gateway.local/v1")
	t.Setenv("PORT", "9000")
	t.Setenv("RETAIN_IMAGE_ON_FAILURE", "true")
	t.Setenv("ALLOWED_IMAGE_HOSTS", "cdn.example.com, , img.example.com")
	t.Setenv("ANALYSIS_WORKERS", "3")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.AnalysisProvider != ProviderOpenAI {
		t.Errorf("Expected openai provider, got %s", cfg.AnalysisProvider)
	}
	if cfg.Port != "9000" || cfg.AnalysisWorkers != 3 || cfg.RequestTimeout != 5*time.Second {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if !cfg.RetainImageOnFailure {
		t.Error("Expected RETAIN_IMAGE_ON_FAILURE to be honoured")
	}
	if len(cfg.AllowedImageHosts) != 2 || cfg.AllowedImageHosts[1] != "img.example.com" {
		t.Errorf("Unexpected host list: %v", cfg.AllowedImageHosts)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing gemini key", map[string]string{}},
		{"missing openai key", map[string]string{"ANALYSIS_PROVIDER": "openai"}},
		{"unknown provider", map[string]string{"ANALYSIS_PROVIDER": "local", "GEMINI_API_KEY": "k"}},
		{"bad port", map[string]string{"PORT": "http", "GEMINI_API_KEY": "k"}},
		{"port out of range", map[string]string{"PORT": "70000", "GEMINI_API_KEY": "k"}},
		{"zero body size", map[string]string{"MAX_REQUEST_BODY_SIZE": "0", "GEMINI_API_KEY": "k"}},
		{"zero workers", map[string]string{"ANALYSIS_WORKERS": "0", "GEMINI_API_KEY": "k"}},
		{"half azure config", map[string]string{"AZURE_STORAGE_ACCOUNT": "acct", "GEMINI_API_KEY": "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadFromEnv(); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}
}

func TestParseDurationOrDefault_IgnoresGarbage(t *testing.T) {
	t.Setenv("AWAIT_TIMEOUT", "soon")
	if d := parseDurationOrDefault("AWAIT_TIMEOUT", time.Minute); d != time.Minute {
		t.Errorf("Expected default, got %s", d)
	}
	t.Setenv("AWAIT_TIMEOUT", "-5s")
	if d := parseDurationOrDefault("AWAIT_TIMEOUT", time.Minute); d != time.Minute {
		t.Errorf("Expected default for negative duration, got %s", d)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LUMINA_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("LUMINA_DOTENV_PROBE") })

	if !LoadDotEnv(path) {
		t.Fatal("Expected .env file to load")
	}
	if got := os.Getenv("LUMINA_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("Expected variable from .env, got %q", got)
	}
	if LoadDotEnv(filepath.Join(dir, "missing.env")) {
		t.Error("Expected missing file to report false")
	}
}
