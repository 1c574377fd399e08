package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Symbols struct {
		Gold   string `yaml:"gold"`
		Silver string `yaml:"silver"`
	} `yaml:"symbols"`
	Stream struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"stream"`
	Providers struct {
		GoldAPIBaseURL string `yaml:"gold_api_base_url"`
		GoldAPIKey     string `yaml:"gold_api_key"`
		QuoteAPIBase   string `yaml:"quote_api_base_url"`
		QuoteAPIKey    string `yaml:"quote_api_key"`
		ScraperURL     string `yaml:"scraper_url"`
	} `yaml:"providers"`
	Schedule struct {
		TickCron   string `yaml:"tick_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	History struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"history"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("STREAM_URL"); v != "" {
		cfg.Stream.URL = v
	}
	if v := os.Getenv("GOLD_API_KEY"); v != "" {
		cfg.Providers.GoldAPIKey = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.Providers.QuoteAPIKey = v
	}
	if v := os.Getenv("CRON_TICK"); v != "" {
		cfg.Schedule.TickCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Symbols.Gold == "" {
		cfg.Symbols.Gold = "XAUUSD"
	}
	if cfg.Symbols.Silver == "" {
		cfg.Symbols.Silver = "XAGUSD"
	}
	if cfg.Stream.URL == "" {
		cfg.Stream.URL = "wss://data.tradingview.com/socket.io/websocket"
	}
	if cfg.Providers.GoldAPIBaseURL == "" {
		cfg.Providers.GoldAPIBaseURL = "https://www.goldapi.io/api"
	}
	if cfg.Providers.QuoteAPIBase == "" {
		cfg.Providers.QuoteAPIBase = "https://api.twelvedata.com"
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "0 * * * * *"
	}
	if cfg.History.StateFile == "" {
		cfg.History.StateFile = "data/signal_history.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/gold_sentry.db"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Symbols.Gold == "" || c.Symbols.Silver == "" {
		return fmt.Errorf("symbols.gold and symbols.silver are required")
	}
	if c.Schedule.TickCron == "" {
		return fmt.Errorf("schedule.tick_cron is required")
	}
	return nil
}
