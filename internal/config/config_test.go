package config

import (
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY",
		"CODEFORGE_MODEL", "CODEFORGE_TEMPERATURE",
		"CODEFORGE_MAX_ITERATIONS", "CODEFORGE_LOG_LEVEL", "CODEFORGE_DB",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected Provider=gemini, got %s", cfg.LLM.Provider)
	}
	if cfg.Workflow.MaxIterations != 5 {
		t.Errorf("expected MaxIterations=5, got %d", cfg.Workflow.MaxIterations)
	}
	if cfg.Workflow.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %g", cfg.Workflow.Temperature)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected Level=INFO, got %s", cfg.Logging.Level)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.Workflow.MaxIterations = 3

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "sk-test" {
		t.Errorf("expected APIKey=sk-test, got %s", loaded.LLM.APIKey)
	}
	if loaded.Workflow.MaxIterations != 3 {
		t.Errorf("expected MaxIterations=3, got %d", loaded.Workflow.MaxIterations)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workflow.MaxIterations != 5 {
		t.Errorf("expected defaults, got MaxIterations=%d", cfg.Workflow.MaxIterations)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("CODEFORGE_MODEL", "gpt-4o")
	t.Setenv("CODEFORGE_MAX_ITERATIONS", "2")
	t.Setenv("CODEFORGE_TEMPERATURE", "0.2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "env-key" {
		t.Errorf("env override not applied: provider=%s key=%s", cfg.LLM.Provider, cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected Model=gpt-4o, got %s", cfg.LLM.Model)
	}
	if cfg.Workflow.MaxIterations != 2 {
		t.Errorf("expected MaxIterations=2, got %d", cfg.Workflow.MaxIterations)
	}
	if cfg.Workflow.Temperature != 0.2 {
		t.Errorf("expected Temperature=0.2, got %g", cfg.Workflow.Temperature)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing API key")
	}

	cfg.LLM.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.Workflow.Temperature = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for temperature out of range")
	}
	cfg.Workflow.Temperature = 0.5

	cfg.Workflow.MaxIterations = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero max_iterations")
	}
	cfg.Workflow.MaxIterations = 1

	cfg.Logging.Level = "TRACE"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
	cfg.Logging.Level = "DEBUG"

	cfg.LLM.Provider = "llama-at-home"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestConfig_TimeoutGetters(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetSandboxTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s sandbox timeout, got %s", got)
	}

	cfg.Sandbox.Timeout = "0"
	if got := cfg.GetSandboxTimeout(); got != 0 {
		t.Errorf("expected disabled sandbox timeout, got %s", got)
	}

	cfg.LLM.Timeout = "bogus"
	if got := cfg.GetLLMTimeout(); got != 2*time.Minute {
		t.Errorf("expected fallback LLM timeout, got %s", got)
	}
}
