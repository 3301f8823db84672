// Package config loads the runtime configuration: trading mode, charter
// thresholds, venue credentials, journal target, and loop pacing.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cmorgan-fx/helm/risk"
)

// Config is the complete runtime configuration.
type Config struct {
	Mode        string            `json:"mode" yaml:"mode"` // "live" or "paper"
	Charter     risk.Charter      `json:"charter" yaml:"charter"`
	Venues      VenuesConfig      `json:"venues" yaml:"venues"`
	Inference   InferenceConfig   `json:"inference" yaml:"inference"`
	Correlation CorrelationConfig `json:"correlation" yaml:"correlation"`
	Journal     JournalConfig     `json:"journal" yaml:"journal"`
	Loop        LoopConfig        `json:"loop" yaml:"loop"`
}

// InferenceConfig points at the external inference service. An empty URL
// disables the source; the ensemble alone never produces tradable signals.
type InferenceConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// VenuesConfig holds per-venue credentials. A venue with no credentials is
// simply not configured; the router excludes it rather than failing.
type VenuesConfig struct {
	OANDA    OANDAConfig    `json:"oanda" yaml:"oanda"`
	Coinbase CoinbaseConfig `json:"coinbase" yaml:"coinbase"`
}

type OANDAConfig struct {
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Practice  bool   `json:"practice" yaml:"practice"`
}

func (c OANDAConfig) Configured() bool { return c.Token != "" && c.AccountID != "" }

type CoinbaseConfig struct {
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
}

func (c CoinbaseConfig) Configured() bool { return c.APIKey != "" && c.APISecret != "" }

// CorrelationConfig tunes the correlation monitor.
type CorrelationConfig struct {
	MaxCorrelated int `json:"max_correlated" yaml:"max_correlated"`
}

// JournalConfig selects the audit-trail backend.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	OrdersFile    string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
}

// LoopConfig paces the control loop. Delays are duration strings ("1s").
type LoopConfig struct {
	TickDelay string `json:"tick_delay" yaml:"tick_delay"`
	HaltDelay string `json:"halt_delay" yaml:"halt_delay"`
}

func (l LoopConfig) TickDuration() (time.Duration, error) {
	if l.TickDelay == "" {
		return time.Second, nil
	}
	return time.ParseDuration(l.TickDelay)
}

func (l LoopConfig) HaltDuration() (time.Duration, error) {
	if l.HaltDelay == "" {
		return 60 * time.Second, nil
	}
	return time.ParseDuration(l.HaltDelay)
}

// Default returns a paper-mode configuration with the standard charter.
func Default() *Config {
	return &Config{
		Mode:        "paper",
		Charter:     risk.DefaultCharter(),
		Correlation: CorrelationConfig{MaxCorrelated: 2},
		Journal:     JournalConfig{Type: "none"},
		Loop:        LoopConfig{TickDelay: "1s", HaltDelay: "60s"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file. Omitted charter
// fields keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Live reports whether the gate should apply live-mode thresholds.
func (c *Config) Live() bool { return strings.EqualFold(c.Mode, "live") }

func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "live", "paper":
	default:
		return fmt.Errorf("mode must be live or paper, got %q", c.Mode)
	}

	if err := c.Charter.Validate(); err != nil {
		return err
	}

	if c.Correlation.MaxCorrelated < 0 {
		return fmt.Errorf("max_correlated cannot be negative")
	}

	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("sqlite journal requires db_path")
		}
	case "csv":
		if c.Journal.DecisionsFile == "" || c.Journal.OrdersFile == "" {
			return fmt.Errorf("csv journal requires decisions_file and orders_file")
		}
	default:
		return fmt.Errorf("journal type must be sqlite, csv or none, got %q", c.Journal.Type)
	}

	if _, err := c.Loop.TickDuration(); err != nil {
		return fmt.Errorf("tick_delay: %w", err)
	}
	if _, err := c.Loop.HaltDuration(); err != nil {
		return fmt.Errorf("halt_delay: %w", err)
	}
	return nil
}
