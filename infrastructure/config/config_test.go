package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 10*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "numtree-development-secret", cfg.SigningSecret())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("STORAGE_DRIVER", "DynamoDB")
	t.Setenv("DYNAMODB_TABLE", "trees-test")
	t.Setenv("CACHE_TTL", "90")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ENABLE_EVENTS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, StorageDynamoDB, cfg.StorageDriver)
	assert.Equal(t, "trees-test", cfg.DynamoDBTable)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EnableEvents)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_address: ":7000"
database_path: /tmp/from-file.db
cache_ttl: 2m
rate_limit_per_minute: 5
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ServerAddress)
	assert.Equal(t, "/tmp/from-file.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 7, cfg.RateLimitPerMinute)
}

func TestLoadConfig_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"production needs secret", func(c *Config) { c.Environment = "production" }, "JWT_SECRET"},
		{"production with secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = "s" }, ""},
		{"unknown driver", func(c *Config) { c.StorageDriver = "postgres" }, "STORAGE_DRIVER"},
		{"sqlite needs path", func(c *Config) { c.DatabasePath = "" }, "DATABASE_PATH"},
		{"events need bus", func(c *Config) { c.EnableEvents = true; c.EventBusName = "" }, "EVENT_BUS_NAME"},
		{"negative rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }, "RATE_LIMIT_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
