// Package config provides Viper-based configuration for the insight journal.
//
// Values come from defaults, an optional YAML or JSON file, and INSIGHT_*
// environment variables (dots become underscores: INSIGHT_STORAGE_DRIVER).
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "INSIGHT"

// Storage drivers.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Pillars    PillarsConfig    `mapstructure:"pillars"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

// StorageConfig selects where the insight collection is persisted
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	DatabaseURL   string `mapstructure:"database_url"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// RateLimit is the sustained generation requests per second per client; Burst is the bucket size.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// LLMConfig contains generation service settings
type LLMConfig struct {
	APIKey          string            `mapstructure:"api_key"`
	Provider        string            `mapstructure:"provider"`
	Models          map[string]string `mapstructure:"models"`
	Temperature     float32           `mapstructure:"temperature"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	BreakerFailures uint32            `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration     `mapstructure:"breaker_timeout"`
}

// GenerationConfig contains batch generation settings
type GenerationConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PillarsConfig optionally replaces the built-in pillar catalog
type PillarsConfig struct {
	File string `mapstructure:"file"`
}

// AuthConfig protects the HTTP API with a single analyst passphrase.
// Auth is disabled when PassphraseHash is empty.
type AuthConfig struct {
	PassphraseHash     string `mapstructure:"passphrase_hash"`
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	Pepper             string `mapstructure:"pepper"`
}

// Enabled reports whether the API requires a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.PassphraseHash != ""
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("insight-journal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/insight-journal")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv keeps the unprefixed variable names used by earlier deployments working.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("storage.database_url", EnvPrefix+"_STORAGE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", EnvPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.jwt_expiration_hours", EnvPrefix+"_AUTH_JWT_EXPIRATION_HOURS", "JWT_EXPIRATION_HOURS")
	_ = v.BindEnv("auth.bcrypt_cost", EnvPrefix+"_AUTH_BCRYPT_COST", "BCRYPT_COST")
	_ = v.BindEnv("auth.pepper", EnvPrefix+"_AUTH_PEPPER", "PASSWORD_PEPPER")
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.database_url", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit", 0.5)
	v.SetDefault("server.rate_burst", 5)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.models", map[string]string{})
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.breaker_failures", 3)
	v.SetDefault("llm.breaker_timeout", 30*time.Second)

	v.SetDefault("generation.concurrency", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("pillars.file", "")

	v.SetDefault("auth.passphrase_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiration_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.pepper", "")
}

var modelTiers = []string{"lite", "standard", "advanced"}

// Validate checks that the configuration has valid values.
// The API key is not required here since only generation commands need it.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("config error: 'storage.dir' is required for the file driver")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("config error: 'storage.redis_addr' is required for the redis driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("config error: 'storage.database_url' is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config error: unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	for tier := range c.LLM.Models {
		if !slices.Contains(modelTiers, tier) {
			return fmt.Errorf("config error: unknown model tier %q (want one of %s)", tier, strings.Join(modelTiers, ", "))
		}
	}
	if c.Generation.Concurrency < 1 {
		return fmt.Errorf("config error: 'generation.concurrency' must be at least 1")
	}

	if c.Auth.Enabled() {
		if _, err := c.Auth.JWT(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if _, err := c.Auth.Password(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	return nil
}
