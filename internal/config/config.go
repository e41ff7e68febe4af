package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port    int `yaml:"port"`
	Workers int `yaml:"workers"` // background processor workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey     string `yaml:"openai_key"`
	GeminiKey     string `yaml:"gemini_key"`
	GeminiURL     string `yaml:"gemini_url"`
	CompatKey     string `yaml:"compat_key"`      // OpenAI-compatible gateway key
	CompatBaseURL string `yaml:"compat_base_url"` // e.g. a self-hosted proxy
	DefaultModel  string `yaml:"default_model"`
}

type CalendarConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	CalendarID   string `yaml:"calendar_id"`
}

// BriefConfig carries the generation policy knobs.
type BriefConfig struct {
	MaxWords           int           `yaml:"max_words"`
	ContextBulletsExec int           `yaml:"context_bullets_exec"`
	ContextBulletsIC   int           `yaml:"context_bullets_ic"`
	MaxAttempts        int           `yaml:"max_attempts"`
	BackoffBase        time.Duration `yaml:"backoff_base"`
	PromptTokenBudget  int           `yaml:"prompt_token_budget"`
	MaxFiles           int           `yaml:"max_files"`
	MaxFileBytes       int64         `yaml:"max_file_bytes"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Calendar CalendarConfig `yaml:"calendar"`
	Brief    BriefConfig    `yaml:"brief"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Workers <= 0 {
		cfg.Server.Workers = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	applyBriefDefaults(&cfg.Brief)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	// Dev mode runs without a provider key and falls back to the noop adapter.
	if !dev && cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" && cfg.AI.CompatKey == "" {
		return nil, errors.New("no AI provider configured: set ai.openai_key, ai.gemini_key or ai.compat_key")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyBriefDefaults(b *BriefConfig) {
	if b.MaxWords <= 0 {
		b.MaxWords = 350
	}
	if b.ContextBulletsExec <= 0 {
		b.ContextBulletsExec = 3
	}
	if b.ContextBulletsIC <= 0 {
		b.ContextBulletsIC = 5
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 3
	}
	if b.BackoffBase <= 0 {
		b.BackoffBase = time.Second
	}
	if b.PromptTokenBudget <= 0 {
		b.PromptTokenBudget = 100_000
	}
	if b.MaxFiles <= 0 {
		b.MaxFiles = 10
	}
	if b.MaxFileBytes <= 0 {
		b.MaxFileBytes = 10 << 20
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
