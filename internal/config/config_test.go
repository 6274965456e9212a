package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("SessionTTL converts minutes to duration", func(t *testing.T) {
		cfg := &Config{SessionTimeoutMinutes: 10}
		assert.Equal(t, 10*time.Minute, cfg.SessionTTL())
	})

	t.Run("PurgeAfter converts hours to duration", func(t *testing.T) {
		cfg := &Config{PurgeAfterHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.PurgeAfter())
	})

	t.Run("Markers drops blank entries", func(t *testing.T) {
		cfg := &Config{NSFMWords: []string{" nsfw ", "", "  ", "/porn/"}}
		assert.Equal(t, []string{"nsfw", "/porn/"}, cfg.Markers())
	})

	t.Run("Markers rejoins patterns split on commas", func(t *testing.T) {
		cfg := &Config{NSFMWords: []string{"nsfm", `/x{2`, `3}/`, "hentai"}}
		assert.Equal(t, []string{"nsfm", `/x{2,3}/`, "hentai"}, cfg.Markers())
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SessionTimeoutMinutes:  10,
			RateLimit:              5,
			RequestRateLimitPerMin: 60,
			TrustedProxyHeader:     "X-Real-IP",
			RedisURL:               "redis://localhost:6379",
		}
	}

	t.Run("accepts defaults", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		cfg := valid()
		cfg.SessionTimeoutMinutes = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative rate limit", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects purge window shorter than session timeout", func(t *testing.T) {
		cfg := valid()
		cfg.SessionTimeoutMinutes = 120
		cfg.PurgeAfterHours = 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts purge window longer than session timeout", func(t *testing.T) {
		cfg := valid()
		cfg.PurgeAfterHours = 24
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "LOG_LEVEL", "SESSION_TIMEOUT_MINUTES",
		"RATE_LIMIT", "NSFM_WORDS", "TRUSTED_PROXY_HEADER", "ALLOW_PRIVATE_IP",
	}
	originalEnv := make(map[string]string, len(keys))
	for _, k := range keys {
		originalEnv[k] = os.Getenv(k)
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

	t.Run("loads config with defaults", func(t *testing.T) {
		for _, k := range keys {
			os.Unsetenv(k)
		}
		os.Setenv("DATABASE_URL", "postgres://localhost/test")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Empty(t, cfg.RedisURL)
		assert.Equal(t, 10, cfg.SessionTimeoutMinutes)
		assert.Equal(t, 5, cfg.RateLimit)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.True(t, cfg.AllowPrivateIP)
		assert.Equal(t, []string{"nsfm", "nsfw", "18+", `/\bporn/`, "hentai"}, cfg.NSFMWords)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("PORT", "3000")
		os.Setenv("SESSION_TIMEOUT_MINUTES", "30")
		os.Setenv("RATE_LIMIT", "2")
		os.Setenv("NSFM_WORDS", "lewd,/gore\\d+/")
		os.Setenv("TRUSTED_PROXY_HEADER", "X-Real-IP")
		os.Setenv("ALLOW_PRIVATE_IP", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
		assert.Equal(t, 2, cfg.RateLimit)
		assert.Equal(t, []string{"lewd", `/gore\d+/`}, cfg.NSFMWords)
		assert.Equal(t, "X-Real-IP", cfg.TrustedProxyHeader)
		assert.False(t, cfg.AllowPrivateIP)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
