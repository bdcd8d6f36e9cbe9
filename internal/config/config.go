package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	OpenRouterURL    string        `mapstructure:"OPENROUTER_URL"`
	OpenRouterAPIKey string        `mapstructure:"OPENROUTER_API_KEY"`
	AIModel          string        `mapstructure:"AI_MODEL"`
	AIMaxTokens      int           `mapstructure:"AI_MAX_TOKENS"`
	AITimeout        time.Duration `mapstructure:"AI_TIMEOUT"`
	AIRequestsPerMin int           `mapstructure:"AI_RPM"`

	PlacesAPIKey string `mapstructure:"GOOGLE_PLACES_API_KEY"`

	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	CacheMaxSizeMB int           `mapstructure:"CACHE_MAX_MB"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OPENROUTER_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("AI_MODEL", "google/gemini-2.0-flash-001")
	v.SetDefault("AI_MAX_TOKENS", 4096)
	v.SetDefault("AI_TIMEOUT", "60s")
	v.SetDefault("AI_RPM", 20)
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("CACHE_MAX_MB", 16)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
