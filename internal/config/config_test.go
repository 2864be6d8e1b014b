package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validYAML = `
instance:
  id: test-reconciler
api:
  key: test-key
  secret: dGVzdC1zZWNyZXQ=
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
`

func TestLoad(t *testing.T) {
	yaml := validYAML + `
categories:
  positions:
    interval: 5m
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-reconciler" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-reconciler")
	}
	if cfg.API.Key != "test-key" {
		t.Errorf("API.Key = %q, want %q", cfg.API.Key, "test-key")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Categories.Positions.Interval != 5*time.Minute {
		t.Errorf("Categories.Positions.Interval = %v, want 5m", cfg.Categories.Positions.Interval)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_API_SECRET", "c2VjcmV0MTIz")

	yaml := `
instance:
  id: test-reconciler
api:
  key: test-key
  secret: ${TEST_API_SECRET}
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Secret != "c2VjcmV0MTIz" {
		t.Errorf("API.Secret = %q, want %q", cfg.API.Secret, "c2VjcmV0MTIz")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.API.RateLimit != DefaultRateLimit {
		t.Errorf("API.RateLimit = %v, want %v", cfg.API.RateLimit, DefaultRateLimit)
	}
	if cfg.Database.SSLMode != DefaultDBSSLMode {
		t.Errorf("Database.SSLMode = %q, want %q", cfg.Database.SSLMode, DefaultDBSSLMode)
	}
	if cfg.Categories.Orders.Interval != DefaultInterval {
		t.Errorf("Categories.Orders.Interval = %v, want %v", cfg.Categories.Orders.Interval, DefaultInterval)
	}
	if cfg.Categories.Positions.Interval != DefaultPositionsInterval {
		t.Errorf("Categories.Positions.Interval = %v, want %v", cfg.Categories.Positions.Interval, DefaultPositionsInterval)
	}
	if cfg.Categories.AssetPairs.Interval != DefaultAssetPairInterval {
		t.Errorf("Categories.AssetPairs.Interval = %v, want %v", cfg.Categories.AssetPairs.Interval, DefaultAssetPairInterval)
	}
}

func TestLoadAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name:    "valid",
			yaml:    validYAML,
			wantErr: false,
		},
		{
			name: "missing instance id",
			yaml: `
api:
  key: test-key
  secret: dGVzdA==
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`,
			wantErr: true,
		},
		{
			name: "missing api secret",
			yaml: `
instance:
  id: test
api:
  key: test-key
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`,
			wantErr: true,
		},
		{
			name: "missing database host",
			yaml: `
instance:
  id: test
api:
  key: test-key
  secret: dGVzdA==
database:
  name: test_db
  user: testuser
  password: testpass
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.yaml)
			_, err := LoadAndValidate(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadAndValidate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryEnabled(t *testing.T) {
	yaml := validYAML + `
categories:
  ledgers:
    enabled: false
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Categories.Ledgers.On() {
		t.Error("Categories.Ledgers.On() = true, want false")
	}
	if !cfg.Categories.Orders.On() {
		t.Error("Categories.Orders.On() = false, want true (default)")
	}
}

func TestCategoriesGet(t *testing.T) {
	var c CategoriesConfig
	c.Trades.Interval = 7 * time.Minute

	cat, ok := c.Get("trades")
	if !ok || cat.Interval != 7*time.Minute {
		t.Errorf("Get(trades) = %v, %v, want 7m, true", cat.Interval, ok)
	}
	if _, ok := c.Get("bogus"); ok {
		t.Error("Get(bogus) = true, want false")
	}
}
