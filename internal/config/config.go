package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`
	DataSource struct {
		Provider string        `yaml:"provider"`
		Proxy    string        `yaml:"proxy"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Cache struct {
		SQLitePath string        `yaml:"sqlite_path"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Analysis struct {
		Workers       int    `yaml:"workers"`
		StockPeriod   string `yaml:"stock_period"`
		IndexPeriod   string `yaml:"index_period"`
		PredictPeriod string `yaml:"predict_period"`
		TopN          int    `yaml:"top_n"`
		PredictTop    int    `yaml:"predict_top"`
	} `yaml:"analysis"`
	Discovery struct {
		Enabled bool          `yaml:"enabled"`
		Delay   time.Duration `yaml:"delay"`
		TopN    int           `yaml:"top_n"`
	} `yaml:"discovery"`
	Schedule struct {
		Timezone string            `yaml:"timezone"`
		Jobs     map[string]string `yaml:"jobs"`
	} `yaml:"schedule"`
	Watchlist struct {
		Path string `yaml:"path"`
	} `yaml:"watchlist"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// Providers lists the accepted data_source.provider values.
var Providers = []string{"yahoo", "financego", "mock"}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.Timeout = 30 * time.Second
	cfg.Cache.SQLitePath = "data/marketpulse.db"
	cfg.Cache.TTL = 15 * time.Minute
	cfg.Analysis.Workers = 5
	cfg.Analysis.StockPeriod = "3mo"
	cfg.Analysis.IndexPeriod = "3mo"
	cfg.Analysis.PredictPeriod = "6mo"
	cfg.Analysis.TopN = 5
	cfg.Analysis.PredictTop = 3
	cfg.Discovery.Enabled = true
	cfg.Discovery.Delay = 300 * time.Millisecond
	cfg.Discovery.TopN = 10
	cfg.Schedule.Timezone = "Asia/Taipei"
	cfg.Schedule.Jobs = map[string]string{
		"tw": "0 30 14 * * 1-5",
		"us": "0 30 5 * * 2-6",
	}
	cfg.Watchlist.Path = "data/watchlist.yaml"
	cfg.Metrics.Addr = ":9090"
	return cfg
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables already set. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.DataSource.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("WATCHLIST_PATH"); v != "" {
		cfg.Watchlist.Path = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse ANALYSIS_WORKERS: %w", err)
		}
		cfg.Analysis.Workers = n
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values. The webhook is only
// required for sending, so it is checked by the caller.
func (c *Config) Validate() error {
	if !validProvider(c.DataSource.Provider) {
		return fmt.Errorf("data_source.provider must be one of %v, got %q", Providers, c.DataSource.Provider)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1")
	}
	if c.Analysis.StockPeriod == "" || c.Analysis.IndexPeriod == "" || c.Analysis.PredictPeriod == "" {
		return fmt.Errorf("analysis periods are required")
	}
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("analysis.top_n must be at least 1")
	}
	if c.Analysis.PredictTop < 0 {
		return fmt.Errorf("analysis.predict_top must not be negative")
	}
	if c.Discovery.TopN < 1 {
		return fmt.Errorf("discovery.top_n must be at least 1")
	}
	if c.Discovery.Delay < 0 {
		return fmt.Errorf("discovery.delay must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves schedule.timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}

func validProvider(p string) bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}
	return false
}
