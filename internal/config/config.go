// Package config loads service configuration from an optional YAML file and
// CALC_* environment variables. API keys are only ever read from here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Rates     RatesConfig     `mapstructure:"rates"`
	History   HistoryConfig   `mapstructure:"history"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RatesConfig points at the latest-rates collaborator.
type RatesConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	BaseCurrency string        `mapstructure:"base_currency"`
	HomeCurrency string        `mapstructure:"home_currency"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// HistoryConfig points at the historical-rates collaborator.
type HistoryConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	WindowDays int           `mapstructure:"window_days"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// QuotesConfig points at the stock quote collaborator and shapes the
// suggestion fan-out.
type QuotesConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Symbols        []string      `mapstructure:"symbols"`
	CurrencySymbol string        `mapstructure:"currency_symbol"`
	MaxSuggestions int           `mapstructure:"max_suggestions"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	JoinTimeout    time.Duration `mapstructure:"join_timeout"`
}

// CacheConfig enables the shared Redis rate snapshot when Addr is set.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

// TelemetryConfig toggles the OTLP exporters.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.currency-crossover/config.yaml
//  3. /etc/currency-crossover/config.yaml
//
// Environment variables override file values: CALC_<SECTION>_<KEY>, e.g.
// CALC_RATES_API_KEY.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".currency-crossover"))
	v.AddConfigPath("/etc/currency-crossover")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Rates.BaseCurrency = strings.ToUpper(cfg.Rates.BaseCurrency)
	cfg.Rates.HomeCurrency = strings.ToUpper(cfg.Rates.HomeCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("rates.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("rates.api_key", "")
	v.SetDefault("rates.base_currency", "USD")
	v.SetDefault("rates.home_currency", "INR")
	v.SetDefault("rates.timeout", 10*time.Second)

	v.SetDefault("history.base_url", "https://api.frankfurter.app")
	v.SetDefault("history.window_days", 30)
	v.SetDefault("history.timeout", 10*time.Second)

	v.SetDefault("quotes.base_url", "https://www.alphavantage.co")
	v.SetDefault("quotes.api_key", "")
	v.SetDefault("quotes.symbols", DefaultSymbols)
	v.SetDefault("quotes.currency_symbol", "₹")
	v.SetDefault("quotes.max_suggestions", 3)
	v.SetDefault("quotes.max_concurrency", len(DefaultSymbols))
	v.SetDefault("quotes.request_timeout", 8*time.Second)
	v.SetDefault("quotes.join_timeout", 15*time.Second)

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("telemetry.enabled", false)
}

// DefaultSymbols are the Bombay Stock Exchange listings the suggestion
// engine prices by default.
var DefaultSymbols = []string{
	"RELIANCE.BSE",
	"TCS.BSE",
	"HDFCBANK.BSE",
	"INFY.BSE",
	"TATAMOTORS.BSE",
	"SBIN.BSE",
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if len(c.Rates.BaseCurrency) != 3 {
		return fmt.Errorf("rates.base_currency must be a 3-letter code, got %q", c.Rates.BaseCurrency)
	}
	if len(c.Rates.HomeCurrency) != 3 {
		return fmt.Errorf("rates.home_currency must be a 3-letter code, got %q", c.Rates.HomeCurrency)
	}
	if c.History.WindowDays <= 0 {
		return fmt.Errorf("history.window_days must be positive, got %d", c.History.WindowDays)
	}
	if c.Quotes.MaxSuggestions <= 0 {
		return fmt.Errorf("quotes.max_suggestions must be positive, got %d", c.Quotes.MaxSuggestions)
	}
	if c.Quotes.RequestTimeout <= 0 || c.Quotes.JoinTimeout <= 0 {
		return fmt.Errorf("quotes timeouts must be positive")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
