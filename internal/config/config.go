package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level ledgerd.yaml configuration.
// Environment variables override file values.
type Config struct {
	Addr     string `yaml:"addr" env:"LEDGERD_ADDR"`
	DBPath   string `yaml:"db_path" env:"LEDGERD_DB_PATH"`
	LogLevel string `yaml:"log_level" env:"LEDGERD_LOG_LEVEL"`
	SeedFile string `yaml:"seed_file,omitempty" env:"LEDGERD_SEED_FILE"`

	Auth   AuthConfig   `yaml:"auth"`
	Limits LimitsConfig `yaml:"limits"`
}

// AuthConfig controls authentication attempt limits and session expiry.
type AuthConfig struct {
	MaxAttempts        int `yaml:"max_attempts" env:"LEDGERD_MAX_ATTEMPTS"`
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds" env:"LEDGERD_IDLE_TIMEOUT_SECONDS"`
	LoginDelayMillis   int `yaml:"login_delay_ms" env:"LEDGERD_LOGIN_DELAY_MS"`
}

// IdleTimeout returns the session idle timeout as a duration.
func (a AuthConfig) IdleTimeout() time.Duration {
	return time.Duration(a.IdleTimeoutSeconds) * time.Second
}

// LoginDelay returns the artificial minimum login latency.
func (a AuthConfig) LoginDelay() time.Duration {
	return time.Duration(a.LoginDelayMillis) * time.Millisecond
}

// LimitsConfig controls money-movement business limits.
type LimitsConfig struct {
	// DailyWithdraw is the per-account daily withdrawal cap in whole
	// currency units.
	DailyWithdraw int64 `yaml:"daily_withdraw" env:"LEDGERD_DAILY_WITHDRAW"`
}

// DailyWithdrawLimit returns the cap as a money amount.
func (l LimitsConfig) DailyWithdrawLimit() decimal.Decimal {
	return decimal.NewFromInt(l.DailyWithdraw)
}

// Load reads a ledgerd.yaml file from disk and applies environment
// overrides. A missing file is not an error: defaults are used so the
// daemon can run from environment configuration alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults + env only.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the reference deployment values.
func Default() *Config {
	return &Config{
		Addr:     ":8080",
		DBPath:   "data/ledger.db",
		LogLevel: "info",
		Auth: AuthConfig{
			MaxAttempts:        3,
			IdleTimeoutSeconds: 180,
			LoginDelayMillis:   0,
		},
		Limits: LimitsConfig{
			DailyWithdraw: 10000,
		},
	}
}
