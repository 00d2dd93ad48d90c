// Package config loads runtime configuration for a cascade session.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Values are populated from
// .cascade.yaml, CASCADE_* env vars, and CLI flags.
type Config struct {
	WorkspaceDir       string  `mapstructure:"workspace_dir"`
	BaselineDB         string  `mapstructure:"baseline_db"`
	Model              string  `mapstructure:"model"`
	BaseURL            string  `mapstructure:"base_url"`
	APIKeyEnv          string  `mapstructure:"api_key_env"`
	RequestTimeoutSecs int     `mapstructure:"request_timeout_secs"`
	MaxRetries         int     `mapstructure:"max_retries"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps"`
	GitPreflight       bool    `mapstructure:"git_preflight"`
	Verbose            bool    `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("workspace_dir", ".")
	viper.SetDefault("baseline_db", ".cascade/baselines.db")
	viper.SetDefault("model", "gpt-4o-mini")
	viper.SetDefault("base_url", "")
	viper.SetDefault("api_key_env", "OPENAI_API_KEY")
	viper.SetDefault("request_timeout_secs", 120)
	viper.SetDefault("max_retries", 2)
	viper.SetDefault("rate_limit_rps", 0.0)
	viper.SetDefault("git_preflight", true)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// APIKey resolves the provider credential from the configured env var.
func (c Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}
