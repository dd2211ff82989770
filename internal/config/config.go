// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the structure for all application configuration.
type Config struct {
	HTTPAddr      string       `yaml:"http_addr"`
	Engine        EngineConf   `yaml:"engine"`
	Grid          GridConf     `yaml:"grid"`
	Monitor       MonitorConf  `yaml:"monitor"`
	Exchange      ExchangeConf `yaml:"exchange"`
	Alert         AlertConf    `yaml:"alert"`
	Database      DatabaseConf `yaml:"database"`
	LogLevel      string       `yaml:"-"` // Loaded from env or defaults
	CredentialKey string       `yaml:"-"` // Loaded from env
}

// EngineConf holds configuration for the bot scheduler and evaluation cycle.
type EngineConf struct {
	DefaultPeriodSec int    `yaml:"default_period_sec"`
	CandleTimeframe  string `yaml:"candle_timeframe"`
	CandleLimit      int    `yaml:"candle_limit"`
	CallTimeoutSec   int    `yaml:"call_timeout_sec"`
}

// DefaultPeriod returns the default evaluation period as a duration.
func (e EngineConf) DefaultPeriod() time.Duration {
	return time.Duration(e.DefaultPeriodSec) * time.Second
}

// CallTimeout returns the per-exchange-call timeout as a duration.
func (e EngineConf) CallTimeout() time.Duration {
	return time.Duration(e.CallTimeoutSec) * time.Second
}

// GridConf holds tunables for the grid strategy that the source treated as
// hard-coded constants.
type GridConf struct {
	Tolerance    float64 `yaml:"tolerance"`      // duplicate-order price tolerance, fraction of level price
	SellCapRatio float64 `yaml:"sell_cap_ratio"` // max fraction of base balance sold per grid order
}

// MonitorConf holds configuration for the trade monitor.
type MonitorConf struct {
	PollIntervalSec int `yaml:"poll_interval_sec"`
}

// PollInterval returns the reconciliation poll interval as a duration.
func (m MonitorConf) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSec) * time.Second
}

// ExchangeConf holds configuration for the exchange client.
type ExchangeConf struct {
	BaseURL         string `yaml:"base_url"`
	WSURL           string `yaml:"ws_url"`
	Testnet         bool   `yaml:"testnet"`
	UseTickerStream bool   `yaml:"use_ticker_stream"`
}

// AlertConf holds configuration for outbound notifications.
type AlertConf struct {
	WebhookURL string `yaml:"webhook_url"`
}

// DatabaseConf holds connection settings for PostgreSQL. When Host is empty
// the application falls back to the in-memory store.
type DatabaseConf struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // Loaded from env
	Name     string `yaml:"name"`
}

// URL builds a postgres connection URL from the individual settings.
func (d DatabaseConf) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		// Default values
		HTTPAddr: ":8080",
		LogLevel: "info",
		Engine: EngineConf{
			DefaultPeriodSec: 30,
			CandleTimeframe:  "1m",
			CandleLimit:      100,
			CallTimeoutSec:   10,
		},
		Grid: GridConf{
			Tolerance:    0.001,
			SellCapRatio: 0.10,
		},
		Monitor: MonitorConf{
			PollIntervalSec: 15,
		},
	}

	// Read YAML file
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, cfg)
	if err != nil {
		return nil, err
	}

	// Load sensitive data and overrides from environment variables
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if key := os.Getenv("CREDENTIAL_KEY"); key != "" {
		cfg.CredentialKey = key
	}
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		cfg.Database.Port = dbPort
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		cfg.Database.Password = dbPassword
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Name = dbName
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.DefaultPeriodSec <= 0 {
		return fmt.Errorf("engine.default_period_sec must be positive, got %d", c.Engine.DefaultPeriodSec)
	}
	if c.Engine.CandleLimit <= 0 {
		return fmt.Errorf("engine.candle_limit must be positive, got %d", c.Engine.CandleLimit)
	}
	if c.Grid.Tolerance <= 0 || c.Grid.Tolerance >= 1 {
		return fmt.Errorf("grid.tolerance must be in (0, 1), got %g", c.Grid.Tolerance)
	}
	if c.Grid.SellCapRatio <= 0 || c.Grid.SellCapRatio > 1 {
		return fmt.Errorf("grid.sell_cap_ratio must be in (0, 1], got %g", c.Grid.SellCapRatio)
	}
	return nil
}
