package config

import "time"

// Config is the root configuration for a reconciler instance.
type Config struct {
	Instance   InstanceConfig   `yaml:"instance"`
	API        APIConfig        `yaml:"api"`
	Database   DBConfig         `yaml:"database"`
	Categories CategoriesConfig `yaml:"categories"`
}

// InstanceConfig identifies this reconciler.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds venue API settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Key     string        `yaml:"key"`    // API key for the API-Key header
	Secret  string        `yaml:"secret"` // base64-encoded signing secret
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit caps outgoing requests per second.
	RateLimit float64 `yaml:"rate_limit"`
}

// DBConfig holds the database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CategoryConfig holds one ingestion category's schedule.
type CategoryConfig struct {
	// Enabled defaults to true when unset.
	Enabled  *bool         `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// On reports whether the category is enabled.
func (c CategoryConfig) On() bool {
	return c.Enabled == nil || *c.Enabled
}

// CategoriesConfig holds the per-category schedules.
type CategoriesConfig struct {
	Balance      CategoryConfig `yaml:"balance"`
	TradeBalance CategoryConfig `yaml:"trade_balance"`
	Orders       CategoryConfig `yaml:"orders"`
	Trades       CategoryConfig `yaml:"trades"`
	Ledgers      CategoryConfig `yaml:"ledgers"`
	Positions    CategoryConfig `yaml:"positions"`
	AssetPairs   CategoryConfig `yaml:"asset_pairs"`
}

// Get returns the schedule for a category name.
func (c *CategoriesConfig) Get(name string) (CategoryConfig, bool) {
	switch name {
	case "balance":
		return c.Balance, true
	case "trade_balance":
		return c.TradeBalance, true
	case "orders":
		return c.Orders, true
	case "trades":
		return c.Trades, true
	case "ledgers":
		return c.Ledgers, true
	case "positions":
		return c.Positions, true
	case "asset_pairs":
		return c.AssetPairs, true
	default:
		return CategoryConfig{}, false
	}
}
