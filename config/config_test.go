package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "KOUJI_STORE", "KOUJI_STORE_PATH", "FS_ROOT", "KOUJI_PATH", "TZ_NAME", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, StoreYAML, cfg.Kouji.Store)
	assert.Equal(t, "~/penguin/豊田築炉/2-工事/.inside.yaml", cfg.Kouji.StorePath)
	assert.Equal(t, "0 0 0 * * *", cfg.Kouji.SnapshotCron)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "pgx", cfg.Database.Driver)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("KOUJI_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://penguin.example")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("HTTP_READ_TIMEOUT", "5s")
	t.Setenv("FS_INCLUDE_HIDDEN", "true")
	t.Setenv("TZ_NAME", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreRedis, cfg.Kouji.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"http://localhost:3000", "https://penguin.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.FS.IncludeHidden)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KOUJI_STORE", "")
	t.Setenv("TZ_NAME", "")
	t.Setenv("DB_PORT", "five")
	t.Setenv("FS_INCLUDE_HIDDEN", "maybe")
	t.Setenv("HTTP_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.FS.IncludeHidden)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			FS:     FSConfig{Root: "/srv/penguin"},
			Kouji:  KoujiConfig{Store: StoreYAML, StorePath: "/srv/penguin/.inside.yaml", TimeZone: "UTC"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing root", func(c *Config) { c.FS.Root = "" }},
		{"unknown store", func(c *Config) { c.Kouji.Store = "sqlite" }},
		{"redis without addr", func(c *Config) { c.Kouji.Store = StoreRedis }},
		{"postgres without host", func(c *Config) { c.Kouji.Store = StorePostgres }},
		{"postgres with unknown driver", func(c *Config) {
			c.Kouji.Store = StorePostgres
			c.Database = DatabaseConfig{Host: "db", Driver: "mysql"}
		}},
		{"bad time zone", func(c *Config) { c.Kouji.TimeZone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
