package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Expire: 24},
		Database: DatabaseConfig{Host: "localhost", User: "shop", DBName: "shop"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Storage:  StorageConfig{Provider: "minio", ResultBucket: "order-results", ReviewBucket: "reviews"},
		Jobs:     JobsConfig{FileRetention: 30 * 24 * time.Hour},
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Short JWT secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Unknown storage provider", func(t *testing.T) {
		cfg := validConfig()
		cfg.Storage.Provider = "ftp"
		assert.ErrorContains(t, cfg.Validate(), "unsupported storage provider")
	})

	t.Run("Missing retention", func(t *testing.T) {
		cfg := validConfig()
		cfg.Jobs.FileRetention = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_USER", "shop")
	t.Setenv("DATABASE_DBNAME", "shop")
	t.Setenv("JOBS_CRON_SECRET", "cron")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "order-results", cfg.Storage.ResultBucket)
	assert.Equal(t, "reviews", cfg.Storage.ReviewBucket)
	assert.Equal(t, 30*24*time.Hour, cfg.Jobs.FileRetention)
	assert.Equal(t, "cron", cfg.Jobs.CronSecret)
}

func TestDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", User: "u", Password: "p", DBName: "shop", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable", cfg.URL())
}
