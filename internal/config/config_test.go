package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/briefs
ai:
  openai_key: sk-test
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.Brief.MaxWords != 350 {
		t.Errorf("max words = %d, want 350", cfg.Brief.MaxWords)
	}
	if cfg.Brief.ContextBulletsExec != 3 || cfg.Brief.ContextBulletsIC != 5 {
		t.Errorf("context caps = %d/%d, want 3/5", cfg.Brief.ContextBulletsExec, cfg.Brief.ContextBulletsIC)
	}
	if cfg.Brief.MaxAttempts != 3 || cfg.Brief.BackoffBase != time.Second {
		t.Errorf("retry policy = %d/%v, want 3/1s", cfg.Brief.MaxAttempts, cfg.Brief.BackoffBase)
	}
	if cfg.Brief.MaxFiles != 10 || cfg.Brief.MaxFileBytes != 10<<20 {
		t.Errorf("upload limits = %d/%d", cfg.Brief.MaxFiles, cfg.Brief.MaxFileBytes)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("redis ttl = %v, want 1h", cfg.Redis.TTL)
	}
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	path := writeConfig(t, `
ai:
  openai_key: sk-test
`)
	if _, err := LoadConfig(path, false); err == nil {
		t.Error("expected error for missing database.url")
	}
}

func TestLoadConfigRequiresAIProvider(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/briefs
`)
	if _, err := LoadConfig(path, false); err == nil {
		t.Error("expected error when no AI key is configured")
	}
}

func TestLoadConfigDevModeNeedsNoAIKey(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/briefs
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not recorded")
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  workers: 8
database:
  url: postgres://localhost/briefs
ai:
  gemini_key: g-test
  default_model: gemini-2.0-flash
brief:
  max_words: 500
  backoff_base: 250ms
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Workers != 8 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Brief.MaxWords != 500 || cfg.Brief.BackoffBase != 250*time.Millisecond {
		t.Errorf("brief = %+v", cfg.Brief)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not recorded")
	}
}
