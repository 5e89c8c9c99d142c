package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_OverlaysDefaults(t *testing.T) {
	data := []byte(`
[default]
model = "gpt-4o"

[security]
autonomy = "full"
allowed_commands = ["cargo", "git"]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Default.Model != "gpt-4o" {
		t.Fatalf("expected overlay model, got %q", cfg.Default.Model)
	}
	if cfg.Default.Provider != "openai" {
		t.Fatalf("expected default provider to survive overlay, got %q", cfg.Default.Provider)
	}
	if cfg.Security.Autonomy != "full" {
		t.Fatalf("expected overlay autonomy, got %q", cfg.Security.Autonomy)
	}
	if len(cfg.Security.AllowedCommands) != 2 {
		t.Fatalf("expected 2 allowed commands, got %v", cfg.Security.AllowedCommands)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Default.Model = "claude-3-opus"
	cfg.Security.AllowedCommands = []string{"ls", "cat"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Default.Model != "claude-3-opus" {
		t.Fatalf("expected round-tripped model, got %q", loaded.Default.Model)
	}
	if len(loaded.Security.AllowedCommands) != 2 {
		t.Fatalf("expected round-tripped allowed commands, got %v", loaded.Security.AllowedCommands)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RRCLAW_DEFAULT_MODEL", "env-model")
	t.Setenv("RRCLAW_SECURITY_AUTONOMY", "readonly")
	t.Setenv("RRCLAW_PROVIDERS_OPENAI_API_KEY", "sk-test-123")

	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Default.Model != "env-model" {
		t.Fatalf("expected env override model, got %q", cfg.Default.Model)
	}
	if cfg.Security.Autonomy != "readonly" {
		t.Fatalf("expected env override autonomy, got %q", cfg.Security.Autonomy)
	}
	if cfg.Providers["openai"].APIKey != "sk-test-123" {
		t.Fatalf("expected env override api key, got %+v", cfg.Providers["openai"])
	}
}

func TestFindConfigFile_PrefersCandidateInOrder(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(old)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if found := FindConfigFile(); found != "" {
		t.Fatalf("expected no config file found, got %q", found)
	}

	if err := os.WriteFile(filepath.Join(dir, "rrclaw.toml"), []byte(""), 0o644); err != nil {
		t.Fatalf("write rrclaw.toml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(""), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}
	if found := FindConfigFile(); found != "config.toml" {
		t.Fatalf("expected config.toml found, got %q", found)
	}
}
