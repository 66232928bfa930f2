// Package config loads process configuration from the environment, in the
// style of a typical 12-factor Go service: a .env file is loaded
// best-effort, then environment variables win with typed defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	LLM      LLMConfig
	ML       MLConfig
	Honeypot HoneypotConfig
	Scoring  ScoringConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds the shared secret every request must present.
type AuthConfig struct {
	APIKey string
}

// LLMConfig configures the optional LLM collaborator used by C1, C3 and
// C11. When Enabled is false (no API key configured), every call site
// falls back to its rule-based / template path.
type LLMConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// MLConfig configures the optional ML probability service (C7).
// Timeout is clamped to MaxMLTimeout at load time.
type MLConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

// MaxMLTimeout is the hard ceiling spec.md §4.7 places on the ML client's
// per-request timeout.
const MaxMLTimeout = 180 * time.Millisecond

// DefaultMLTimeout is used when ML_TIMEOUT_MS is unset.
const DefaultMLTimeout = 150 * time.Millisecond

// HoneypotConfig configures the standalone honeypot engine (C13).
type HoneypotConfig struct {
	SessionTimeout        time.Duration
	SweepInterval         time.Duration
	MinMessagesForCallback int
	CallbackURL           string
}

// ScoringConfig configures thresholds shared across the scoring pipeline.
type ScoringConfig struct {
	ScamThreshold float64
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first, best-effort; missing files are not an
// error.
func Load() *Config {
	_ = godotenv.Load()

	mlTimeout := getEnvAsDuration("ML_TIMEOUT_MS", DefaultMLTimeout, time.Millisecond)
	if mlTimeout > MaxMLTimeout {
		mlTimeout = MaxMLTimeout
	}
	if mlTimeout <= 0 {
		mlTimeout = DefaultMLTimeout
	}

	llmKey := getEnv("LLM_API_KEY", "")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT_SECONDS", 10*time.Second, time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT_SECONDS", 30*time.Second, time.Second),
			IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT_SECONDS", 60*time.Second, time.Second),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		LLM: LLMConfig{
			Enabled: llmKey != "",
			APIKey:  llmKey,
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: getEnvAsDuration("LLM_TIMEOUT_SECONDS", 5*time.Second, time.Second),
		},
		ML: MLConfig{
			Enabled: getEnv("ML_URL", "") != "",
			URL:     getEnv("ML_URL", ""),
			Timeout: mlTimeout,
		},
		Honeypot: HoneypotConfig{
			SessionTimeout:         getEnvAsDuration("SESSION_TIMEOUT_MINUTES", 30*time.Minute, time.Minute),
			SweepInterval:          getEnvAsDuration("HONEYPOT_SWEEP_MINUTES", 5*time.Minute, time.Minute),
			MinMessagesForCallback: getEnvAsInt("MIN_MESSAGES_FOR_CALLBACK", 3),
			CallbackURL:            getEnv("HONEYPOT_CALLBACK_URL", ""),
		},
		Scoring: ScoringConfig{
			ScamThreshold: getEnvAsFloat("SCAM_THRESHOLD", 0.4),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration, unit time.Duration) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return time.Duration(v) * unit
	}
	return defaultValue
}
