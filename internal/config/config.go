package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderAPIKey is the value shipped in sample .env files. It is treated
// the same as an empty key.
const PlaceholderAPIKey = "YOUR_GEMINI_API_KEY"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	StoreMongo    = "mongodb"
	StorePostgres = "postgres"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	LLMProvider       string        `mapstructure:"LLM_PROVIDER"`
	LLMModel          string        `mapstructure:"LLM_MODEL"`
	LLMBaseURL        string        `mapstructure:"LLM_BASE_URL"`
	LLMTimeout        time.Duration `mapstructure:"LLM_TIMEOUT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	HistoryCollection string        `mapstructure:"HISTORY_COLLECTION"`
	DBMaxConns        int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
	DemoDelay         time.Duration `mapstructure:"DEMO_DELAY"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit         string        `mapstructure:"BODY_LIMIT"`
}

// Load reads configuration from the environment. When envFile is non-empty it
// is loaded into the process environment first; a missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("ENV", "development")
	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("LLM_MODEL", "gemini-1.5-flash")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "medical_scribe")
	v.SetDefault("HISTORY_COLLECTION", "history")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DEMO_DELAY", "2s")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("BODY_LIMIT", "1M")

	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("LLM_PROVIDER")
	v.BindEnv("LLM_MODEL")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("LLM_TIMEOUT")
	// MONGODB_URI is accepted for compatibility with existing deployments.
	v.BindEnv("DATABASE_URL", "DATABASE_URL", "MONGODB_URI")
	v.BindEnv("DATABASE_NAME")
	v.BindEnv("HISTORY_COLLECTION")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DEMO_DELAY")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("BODY_LIMIT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsDemoMode reports whether notes are served from the canned demo note
// instead of the generative API.
func (c *Config) IsDemoMode() bool {
	return c.GeminiAPIKey == "" || c.GeminiAPIKey == PlaceholderAPIKey
}

// Mode returns "demo" or "live".
func (c *Config) Mode() string {
	if c.IsDemoMode() {
		return "demo"
	}
	return "live"
}

// StoreBackend infers the history store backend from the DATABASE_URL scheme.
func (c *Config) StoreBackend() (string, error) {
	u := strings.ToLower(c.DatabaseURL)
	switch {
	case strings.HasPrefix(u, "mongodb://"), strings.HasPrefix(u, "mongodb+srv://"):
		return StoreMongo, nil
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return StorePostgres, nil
	}
	return "", fmt.Errorf("DATABASE_URL must use a mongodb:// or postgres:// scheme")
}

// Validate checks that the configuration is usable. Live-mode settings are
// only checked when an API key is configured.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := c.StoreBackend(); err != nil {
		return err
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}
	if c.HistoryCollection == "" {
		return fmt.Errorf("HISTORY_COLLECTION is required")
	}
	if c.DBMinConns < 0 || c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d) >= 0", c.DBMaxConns, c.DBMinConns)
	}
	if c.DemoDelay < 0 {
		return fmt.Errorf("DEMO_DELAY must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if !c.IsDemoMode() {
		if c.LLMProvider != ProviderGemini && c.LLMProvider != ProviderOpenAI {
			return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.LLMProvider)
		}
		if c.LLMModel == "" {
			return fmt.Errorf("LLM_MODEL is required when GEMINI_API_KEY is set")
		}
		if c.LLMTimeout <= 0 {
			return fmt.Errorf("LLM_TIMEOUT must be positive")
		}
	}
	return nil
}
