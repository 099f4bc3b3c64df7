package infra

import (
	"errors"
	"fmt"
	"os"
	"time"

	"daytrade_go/internal/domain"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration errors. These are fatal at
// construction time; the engine never starts with a bad config.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the full engine configuration. Loaded once at startup,
// never mutated afterwards.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Enabled            bool   `yaml:"enabled"`
		PaperTrading       bool   `yaml:"paper_trading"`
		ConfirmBeforeTrade bool   `yaml:"confirm_before_trade"`
		Mode               string `yaml:"mode"` // PAPER, LOG, REAL
	} `yaml:"trading"`

	Schedule struct {
		BuyTime              string `yaml:"buy_time"`         // "HH:MM", weekdays
		SellCheckStart       string `yaml:"sell_check_start"` // "HH:MM"
		SellCheckIntervalSec int    `yaml:"sell_check_interval_sec"`
		ForceCloseTime       string `yaml:"force_close_time"` // "HH:MM"
		Timezone             string `yaml:"timezone"`
	} `yaml:"schedule"`

	RiskManagement domain.RiskThresholds `yaml:"risk_management"`

	Screening struct {
		domain.ScreenCriteria `yaml:",inline"`
		CandidateCount        int      `yaml:"candidate_count"`
		Universe              []string `yaml:"universe"`
	} `yaml:"screening"`

	Signals struct {
		MinSources            int     `yaml:"min_sources"`
		CacheTTLSec           int     `yaml:"cache_ttl_sec"`
		AggregationTimeoutSec int     `yaml:"aggregation_timeout_sec"`
		SourceSpacingMS       int     `yaml:"source_spacing_ms"`
		BreakerCooldownSec    int     `yaml:"breaker_cooldown_sec"`
		HardTakeProfit        float64 `yaml:"hard_take_profit"`
	} `yaml:"signals"`

	Notifications struct {
		WebhookURL string `yaml:"webhook_url"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"notifications"`

	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// envOverrides are applied on top of the YAML file. Secrets and
// deployment-specific paths belong in the environment, not the file.
type envOverrides struct {
	WebhookURL string `env:"DAYTRADE_WEBHOOK_URL"`
	DBPath     string `env:"DAYTRADE_DB_PATH"`
	Mode       string `env:"DAYTRADE_MODE"`
	Timezone   string `env:"DAYTRADE_TZ"`
}

// DefaultConfig returns a runnable paper-trading configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "daytrade-go"
	cfg.App.Version = "dev"

	cfg.Trading.Enabled = true
	cfg.Trading.PaperTrading = true
	cfg.Trading.Mode = "PAPER"

	cfg.Schedule.BuyTime = "09:00"
	cfg.Schedule.SellCheckStart = "09:30"
	cfg.Schedule.SellCheckIntervalSec = 60
	cfg.Schedule.ForceCloseTime = "14:55"
	cfg.Schedule.Timezone = "Asia/Tokyo"

	cfg.RiskManagement = domain.RiskThresholds{
		StopLoss:          -0.03,
		EmergencyStopLoss: -0.08,
		TakeProfit:        0.05,
		MaxPositionSize:   500000,
		MaxDailyTrades:    1,
	}

	cfg.Screening.MinPrice = 100
	cfg.Screening.MaxPrice = 5000
	cfg.Screening.MinVolume = 100000
	cfg.Screening.CandidateCount = 10

	cfg.Signals.MinSources = 3
	cfg.Signals.CacheTTLSec = 300
	cfg.Signals.AggregationTimeoutSec = 30
	cfg.Signals.SourceSpacingMS = 200
	cfg.Signals.BreakerCooldownSec = 24 * 60 * 60
	cfg.Signals.HardTakeProfit = 0.07

	cfg.Storage.DBPath = ""
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads the YAML file, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if ov.WebhookURL != "" {
		cfg.Notifications.WebhookURL = ov.WebhookURL
	}
	if ov.DBPath != "" {
		cfg.Storage.DBPath = ov.DBPath
	}
	if ov.Mode != "" {
		cfg.Trading.Mode = ov.Mode
	}
	if ov.Timezone != "" {
		cfg.Schedule.Timezone = ov.Timezone
	}
	return nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	for _, clock := range []struct{ name, value string }{
		{"buy_time", c.Schedule.BuyTime},
		{"sell_check_start", c.Schedule.SellCheckStart},
		{"force_close_time", c.Schedule.ForceCloseTime},
	} {
		if _, _, err := ParseClock(clock.value); err != nil {
			return fmt.Errorf("%w: schedule.%s: %v", ErrInvalidConfig, clock.name, err)
		}
	}
	if c.Schedule.SellCheckIntervalSec <= 0 {
		return fmt.Errorf("%w: sell_check_interval_sec must be positive", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Schedule.Timezone)
	}

	if err := c.RiskManagement.Validate(); err != nil {
		return fmt.Errorf("%w: risk_management: %v", ErrInvalidConfig, err)
	}

	if c.Screening.CandidateCount <= 0 {
		return fmt.Errorf("%w: candidate_count must be positive", ErrInvalidConfig)
	}
	if c.Screening.MinPrice < 0 || c.Screening.MaxPrice < c.Screening.MinPrice {
		return fmt.Errorf("%w: screening price bounds are inverted", ErrInvalidConfig)
	}

	if c.Signals.MinSources < 1 {
		return fmt.Errorf("%w: min_sources must be at least 1", ErrInvalidConfig)
	}
	if c.Signals.HardTakeProfit <= c.RiskManagement.TakeProfit {
		return fmt.Errorf("%w: hard_take_profit must exceed take_profit", ErrInvalidConfig)
	}
	return nil
}

// Location returns the configured trading timezone.
// Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.Schedule.Timezone)
	return loc
}

// CacheTTL returns the signal cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Signals.CacheTTLSec) * time.Second
}

// AggregationTimeout returns the shared per-aggregation-call timeout.
func (c *Config) AggregationTimeout() time.Duration {
	return time.Duration(c.Signals.AggregationTimeoutSec) * time.Second
}

// SourceSpacing returns the minimum inter-call spacing per source.
func (c *Config) SourceSpacing() time.Duration {
	return time.Duration(c.Signals.SourceSpacingMS) * time.Millisecond
}

// BreakerCooldown returns the circuit breaker re-enable cooldown.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.Signals.BreakerCooldownSec) * time.Second
}

// SellCheckInterval returns the monitoring poll interval.
func (c *Config) SellCheckInterval() time.Duration {
	return time.Duration(c.Schedule.SellCheckIntervalSec) * time.Second
}
