package config

import (
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Pipeline      PipelineConfig
	Stores        StoreConfig
	Gemini        GeminiConfig
	Observability ObservabilityConfig
}

// PipelineConfig controls document processing behaviour.
type PipelineConfig struct {
	// Workers is the number of PDFs parsed concurrently.
	Workers int
	// MaxExcerptBytes bounds how much document text is sent to the
	// delegated extraction/classification service.
	MaxExcerptBytes int
}

// StoreConfig locates the JSON-backed persistence files.
type StoreConfig struct {
	// LearnedRulesPath is the append-only learned keyword rule file.
	LearnedRulesPath string
	// LayoutPatternsPath caches delegated-extraction regex patterns per
	// document layout fingerprint.
	LayoutPatternsPath string
	// RuleMirrorURL, when set, receives a best-effort copy of the learned
	// rule file on every successful learn event.
	RuleMirrorURL string
}

// GeminiConfig configures the delegated text-understanding service.
// An empty APIKey disables the delegated tier entirely.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// CallsPerMinute rate-limits delegated calls across the process.
	CallsPerMinute int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Pipeline: PipelineConfig{
			Workers:         getEnvAsInt("PIPELINE_WORKERS", 4),
			MaxExcerptBytes: getEnvAsInt("PIPELINE_MAX_EXCERPT_BYTES", 3000),
		},
		Stores: StoreConfig{
			LearnedRulesPath:   getEnv("LEARNED_RULES_PATH", "data/learned_rules.json"),
			LayoutPatternsPath: getEnv("LAYOUT_PATTERNS_PATH", "data/layout_patterns.json"),
			RuleMirrorURL:      getEnv("RULE_MIRROR_URL", ""),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:        time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 30)) * time.Second,
			CallsPerMinute: getEnvAsInt("GEMINI_CALLS_PER_MINUTE", 30),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
