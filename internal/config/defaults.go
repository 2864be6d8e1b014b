package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL    = "https://api.kraken.com"
	DefaultAPITimeout = 30 * time.Second
	DefaultRateLimit  = 0.33
	DefaultDBPort     = 5432
	DefaultDBSSLMode  = "prefer"
	DefaultMaxConns   = 10
	DefaultMinConns   = 2

	// Most categories refresh hourly. Positions move faster; the pair
	// listing barely moves at all.
	DefaultInterval          = 60 * time.Minute
	DefaultPositionsInterval = 10 * time.Minute
	DefaultAssetPairInterval = 12 * time.Hour
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultRateLimit
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Category defaults
	applyIntervalDefault(&c.Categories.Balance, DefaultInterval)
	applyIntervalDefault(&c.Categories.TradeBalance, DefaultInterval)
	applyIntervalDefault(&c.Categories.Orders, DefaultInterval)
	applyIntervalDefault(&c.Categories.Trades, DefaultInterval)
	applyIntervalDefault(&c.Categories.Ledgers, DefaultInterval)
	applyIntervalDefault(&c.Categories.Positions, DefaultPositionsInterval)
	applyIntervalDefault(&c.Categories.AssetPairs, DefaultAssetPairInterval)
}

func applyIntervalDefault(cat *CategoryConfig, interval time.Duration) {
	if cat.Interval == 0 {
		cat.Interval = interval
	}
}
