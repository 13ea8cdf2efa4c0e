package config

import (
	"time"

	"golang-stock-signal/pkg/config"
)

// Executor holds the redis-stream trigger settings.
type Executor struct {
	RedisStreamSignalRunTimeout         time.Duration `mapstructure:"redis_stream_signal_run_timeout"`
	RedisStreamSignalRunRetryInterval   time.Duration `mapstructure:"redis_stream_signal_run_retry_interval"`
	RedisStreamSignalRunMaxIdleDuration time.Duration `mapstructure:"redis_stream_signal_run_max_idle_duration"`
	RedisStreamSignalRunMaxRetry        int           `mapstructure:"redis_stream_signal_run_max_retry"`
}

// Pipeline holds the recommendation run policy.
type Pipeline struct {
	// Schedule is a cron expression evaluated in the market timezone. Empty disables it.
	Schedule           string        `mapstructure:"schedule"`
	MaxSymbolsPerRun   int           `mapstructure:"max_symbols_per_run"`
	CapPolicy          string        `mapstructure:"cap_policy"`
	Workers            int           `mapstructure:"workers"`
	RunTimeout         time.Duration `mapstructure:"run_timeout"`
	UnitTimeout        time.Duration `mapstructure:"unit_timeout"`
	ConfirmationPolicy string        `mapstructure:"confirmation_policy"`
	CallsPerSymbol     int           `mapstructure:"calls_per_symbol"`
	LookbackDays       int           `mapstructure:"lookback_days"`
	Horizon            string        `mapstructure:"horizon"`
	NotifyTelegram     bool          `mapstructure:"notify_telegram"`
}

// Classifier holds scoring options.
type Classifier struct {
	MAScoring        string        `mapstructure:"ma_scoring"`
	MinCombinedScore float64       `mapstructure:"min_combined_score"`
	SnapshotTTL      time.Duration `mapstructure:"snapshot_ttl"`
}

// Enrichment holds the narrative adapter limits.
type Enrichment struct {
	Enabled       bool          `mapstructure:"enabled"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DispatchDelay time.Duration `mapstructure:"dispatch_delay"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string  `mapstructure:"api_key"`
	Model               string  `mapstructure:"model"`
	Temperature         float32 `mapstructure:"temperature"`
	MaxRequestPerMinute int     `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int     `mapstructure:"max_token_per_minute"`
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	SymbolSuffix        string `mapstructure:"symbol_suffix"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Fundamental holds the configuration for the ratio provider.
type Fundamental struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// TradingView holds the configuration for the TradingView screener.
type TradingView struct {
	BaseURL             string  `mapstructure:"base_url"`
	Market              string  `mapstructure:"market"`
	MaxRequestPerMinute int     `mapstructure:"max_request_per_minute"`
	MinTechnicalRating  float64 `mapstructure:"min_technical_rating"`
}

// Watchlist selects where candidates come from: "tradingview" or "database".
type Watchlist struct {
	Source string `mapstructure:"source"`
}

// Cache selects the snapshot cache backend: "memory" or "redis".
type Cache struct {
	Backend         string        `mapstructure:"backend"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// News holds the RSS headline source used in narrative prompts.
type News struct {
	Enabled  bool   `mapstructure:"enabled"`
	FeedURL  string `mapstructure:"feed_url"`
	MaxItems int    `mapstructure:"max_items"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the executor service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	Kafka        config.Kafka    `mapstructure:"kafka"`
	API          config.API      `mapstructure:"api"`
	Executor     Executor        `mapstructure:"executor"`
	Pipeline     Pipeline        `mapstructure:"pipeline"`
	Classifier   Classifier      `mapstructure:"classifier"`
	Enrichment   Enrichment      `mapstructure:"enrichment"`
	Gemini       Gemini          `mapstructure:"gemini"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Fundamental  Fundamental     `mapstructure:"fundamental"`
	TradingView  TradingView     `mapstructure:"tradingview"`
	Watchlist    Watchlist       `mapstructure:"watchlist"`
	Cache        Cache           `mapstructure:"cache"`
	News         News            `mapstructure:"news"`
	Telegram     Telegram        `mapstructure:"telegram"`
}

// Load loads the executor configuration from the given path and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.MaxSymbolsPerRun <= 0 {
		c.Pipeline.MaxSymbolsPerRun = 30
	}
	if c.Pipeline.CapPolicy == "" {
		c.Pipeline.CapPolicy = "input_order"
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 3
	}
	if c.Pipeline.RunTimeout <= 0 {
		c.Pipeline.RunTimeout = 10 * time.Minute
	}
	if c.Pipeline.UnitTimeout <= 0 {
		c.Pipeline.UnitTimeout = 90 * time.Second
	}
	if c.Pipeline.ConfirmationPolicy == "" {
		c.Pipeline.ConfirmationPolicy = "dual"
	}
	if c.Pipeline.CallsPerSymbol <= 0 {
		c.Pipeline.CallsPerSymbol = 3
	}
	if c.Pipeline.LookbackDays <= 0 {
		c.Pipeline.LookbackDays = 120
	}
	if c.Pipeline.Horizon == "" {
		c.Pipeline.Horizon = "short"
	}
	if c.Classifier.MAScoring == "" {
		c.Classifier.MAScoring = "binary"
	}
	if c.Classifier.MinCombinedScore <= 0 {
		c.Classifier.MinCombinedScore = 70
	}
	if c.Classifier.SnapshotTTL <= 0 {
		c.Classifier.SnapshotTTL = 5 * time.Minute
	}
	if c.Enrichment.Timeout <= 0 {
		c.Enrichment.Timeout = 30 * time.Second
	}
	if c.Enrichment.MaxConcurrent <= 0 {
		c.Enrichment.MaxConcurrent = 2
	}
	if c.Enrichment.DispatchDelay <= 0 {
		c.Enrichment.DispatchDelay = 2 * time.Second
	}
	if c.YahooFinance.SymbolSuffix == "" {
		c.YahooFinance.SymbolSuffix = ".VN"
	}
	if c.YahooFinance.MaxRequestPerMinute <= 0 {
		c.YahooFinance.MaxRequestPerMinute = 60
	}
	if c.Fundamental.MaxRequestPerMinute <= 0 {
		c.Fundamental.MaxRequestPerMinute = 60
	}
	if c.TradingView.MaxRequestPerMinute <= 0 {
		c.TradingView.MaxRequestPerMinute = 30
	}
	if c.TradingView.Market == "" {
		c.TradingView.Market = "vietnam"
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 10
	}
	if c.Watchlist.Source == "" {
		c.Watchlist.Source = "tradingview"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.CleanupInterval <= 0 {
		c.Cache.CleanupInterval = 10 * time.Minute
	}
	if c.News.MaxItems <= 0 {
		c.News.MaxItems = 5
	}
}
