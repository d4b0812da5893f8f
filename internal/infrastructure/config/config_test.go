package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"CTIS_APP_NAME":                os.Getenv("CTIS_APP_NAME"),
		"CTIS_APP_ENV":                 os.Getenv("CTIS_APP_ENV"),
		"CTIS_APP_PORT":                os.Getenv("CTIS_APP_PORT"),
		"CTIS_DATABASE_HOST":           os.Getenv("CTIS_DATABASE_HOST"),
		"CTIS_DATABASE_PORT":           os.Getenv("CTIS_DATABASE_PORT"),
		"CTIS_DATABASE_USER":           os.Getenv("CTIS_DATABASE_USER"),
		"CTIS_DATABASE_PASSWORD":       os.Getenv("CTIS_DATABASE_PASSWORD"),
		"CTIS_DATABASE_DBNAME":         os.Getenv("CTIS_DATABASE_DBNAME"),
		"CTIS_DATABASE_SSLMODE":        os.Getenv("CTIS_DATABASE_SSLMODE"),
		"CTIS_DATABASE_MAX_OPEN_CONNS": os.Getenv("CTIS_DATABASE_MAX_OPEN_CONNS"),
		"CTIS_DATABASE_MAX_IDLE_CONNS": os.Getenv("CTIS_DATABASE_MAX_IDLE_CONNS"),
		"CTIS_JWT_SECRET":              os.Getenv("CTIS_JWT_SECRET"),
		"CTIS_CACHE_TYPE":              os.Getenv("CTIS_CACHE_TYPE"),
		"CTIS_CACHE_TTL":               os.Getenv("CTIS_CACHE_TTL"),
		"CTIS_STORAGE_PROVIDER":        os.Getenv("CTIS_STORAGE_PROVIDER"),
		"CTIS_EMAIL_ENABLED":           os.Getenv("CTIS_EMAIL_ENABLED"),
		"CTIS_EMAIL_HOST":              os.Getenv("CTIS_EMAIL_HOST"),
		"CTIS_EMAIL_FROM":              os.Getenv("CTIS_EMAIL_FROM"),
		"CTIS_ADMIN_EMAIL":             os.Getenv("CTIS_ADMIN_EMAIL"),
		"APP_ENV":                      os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ctis-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "ctis", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	})

	t.Run("applies compliance-specific defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "memory", cfg.Cache.Type)
		assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, 30*time.Second, cfg.Cache.RetryDelay)
		assert.Equal(t, "stub", cfg.Storage.Provider)
		assert.Equal(t, "ctis-documents", cfg.Storage.Bucket)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
		assert.Equal(t, 5*time.Second, cfg.Webhook.PollInterval)
		assert.Equal(t, 50, cfg.Webhook.BatchSize)
		assert.Equal(t, 72*time.Hour, cfg.Webhook.SentRetention)
		assert.Equal(t, 587, cfg.Email.Port)
		assert.Equal(t, "BettsTax", cfg.Email.FromName)
		assert.Equal(t, "0 2 * * *", cfg.Scheduler.DailyCronSchedule)
		assert.Equal(t, 10, cfg.JWT.MaxRefreshCount)
	})

	t.Run("loads values from environment variables with CTIS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_APP_NAME", "test-app")
		os.Setenv("CTIS_APP_ENV", "testing")
		os.Setenv("CTIS_APP_PORT", "9000")
		os.Setenv("CTIS_DATABASE_HOST", "testdb.local")
		os.Setenv("CTIS_DATABASE_PORT", "5433")
		os.Setenv("CTIS_DATABASE_USER", "testuser")
		os.Setenv("CTIS_DATABASE_PASSWORD", "testpass")
		os.Setenv("CTIS_DATABASE_DBNAME", "testdb")
		os.Setenv("CTIS_DATABASE_SSLMODE", "require")
		os.Setenv("CTIS_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("CTIS_DATABASE_MAX_IDLE_CONNS", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	})

	t.Run("reads bootstrap admin account from environment", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_ADMIN_EMAIL", "admin@betts.sl")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "admin@betts.sl", cfg.Admin.Email)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("CTIS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown cache type", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_CACHE_TYPE", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.type")
	})

	t.Run("rejects unknown storage provider", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_STORAGE_PROVIDER", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.provider")
	})

	t.Run("requires host and sender when email enabled", func(t *testing.T) {
		clearEnv()
		os.Setenv("CTIS_EMAIL_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email.host is required")

		os.Setenv("CTIS_EMAIL_HOST", "smtp.betts.sl")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email.from is required")

		os.Setenv("CTIS_EMAIL_FROM", "noreply@betts.sl")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Email.Enabled)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"CTIS_APP_ENV":              os.Getenv("CTIS_APP_ENV"),
		"CTIS_JWT_SECRET":           os.Getenv("CTIS_JWT_SECRET"),
		"CTIS_DATABASE_PASSWORD":    os.Getenv("CTIS_DATABASE_PASSWORD"),
		"CTIS_DATABASE_SSLMODE":     os.Getenv("CTIS_DATABASE_SSLMODE"),
		"CTIS_COOKIE_SECURE":        os.Getenv("CTIS_COOKIE_SECURE"),
		"CTIS_STORAGE_PROVIDER":     os.Getenv("CTIS_STORAGE_PROVIDER"),
		"CTIS_STORAGE_ACCESS_KEY":   os.Getenv("CTIS_STORAGE_ACCESS_KEY"),
		"CTIS_STORAGE_SECRET_KEY":   os.Getenv("CTIS_STORAGE_SECRET_KEY"),
		"CTIS_SWAGGER_ENABLED":      os.Getenv("CTIS_SWAGGER_ENABLED"),
		"CTIS_SWAGGER_REQUIRE_AUTH": os.Getenv("CTIS_SWAGGER_REQUIRE_AUTH"),
		"CTIS_SWAGGER_ALLOWED_IPS":  os.Getenv("CTIS_SWAGGER_ALLOWED_IPS"),
		"APP_ENV":                   os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	// Helper to set valid production base config
	setValidProductionBase := func() {
		os.Setenv("CTIS_APP_ENV", "production")
		os.Setenv("CTIS_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("CTIS_DATABASE_PASSWORD", "secure-password")
		os.Setenv("CTIS_DATABASE_SSLMODE", "require")
		os.Setenv("CTIS_COOKIE_SECURE", "true")
		os.Setenv("CTIS_STORAGE_PROVIDER", "s3")
		os.Setenv("CTIS_STORAGE_ACCESS_KEY", "minio")
		os.Setenv("CTIS_STORAGE_SECRET_KEY", "minio-secret")
		os.Setenv("CTIS_SWAGGER_ENABLED", "false") // Disabled by default for security
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("CTIS_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("CTIS_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects stub storage in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_STORAGE_PROVIDER", "stub")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.provider cannot be 'stub' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_SWAGGER_ENABLED", "true")
		os.Setenv("CTIS_SWAGGER_REQUIRE_AUTH", "false")
		// No IP whitelist set

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled, require authentication, or have IP restriction")
	})

	t.Run("passes with swagger enabled and require_auth in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_SWAGGER_ENABLED", "true")
		os.Setenv("CTIS_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
		assert.True(t, cfg.Swagger.RequireAuth)
	})

	t.Run("passes with swagger disabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("CTIS_SWAGGER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Swagger.Enabled)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
