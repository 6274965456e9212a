package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                   int      `env:"PORT" envDefault:"8080"`
	DatabaseURL            string   `env:"DATABASE_URL,required"`
	RedisURL               string   `env:"REDIS_URL"`
	LogLevel               string   `env:"LOG_LEVEL" envDefault:"info"`
	AutoMigrate            bool     `env:"AUTO_MIGRATE" envDefault:"true"`
	ListingName            string   `env:"LISTING_NAME" envDefault:"Session listing"`
	ListingDescription     string   `env:"LISTING_DESCRIPTION" envDefault:"A public directory of drawing sessions"`
	ListingFavicon         string   `env:"LISTING_FAVICON" envDefault:""`
	SessionTimeoutMinutes  int      `env:"SESSION_TIMEOUT_MINUTES" envDefault:"10"`
	RateLimit              int      `env:"RATE_LIMIT" envDefault:"5"`
	NSFMWords              []string `env:"NSFM_WORDS" envSeparator:"," envDefault:"nsfm,nsfw,18+,/\\bporn/,hentai"`
	TrustedProxyHeader     string   `env:"TRUSTED_PROXY_HEADER" envDefault:""`
	AllowPrivateIP         bool     `env:"ALLOW_PRIVATE_IP" envDefault:"true"`
	RequestRateLimitPerMin int      `env:"REQUEST_RATE_LIMIT_PER_MIN" envDefault:"60"`
	PurgeAfterHours        int      `env:"PURGE_AFTER_HOURS" envDefault:"0"`
}

// SessionTTL is both the listing expiry window and the rate limit counting window.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

func (c *Config) PurgeAfter() time.Duration {
	return time.Duration(c.PurgeAfterHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.SessionTimeoutMinutes <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT_MINUTES must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}
	if c.RequestRateLimitPerMin < 0 {
		return fmt.Errorf("REQUEST_RATE_LIMIT_PER_MIN must not be negative")
	}
	if c.PurgeAfterHours < 0 {
		return fmt.Errorf("PURGE_AFTER_HOURS must not be negative")
	}
	if c.PurgeAfterHours > 0 && c.PurgeAfter() <= c.SessionTTL() {
		return fmt.Errorf("PURGE_AFTER_HOURS must be longer than SESSION_TIMEOUT_MINUTES")
	}

	if c.TrustedProxyHeader == "" {
		log.Warn().Msg("TRUSTED_PROXY_HEADER is empty: rate limiting uses the transport peer address")
	}
	if c.RedisURL == "" && c.RequestRateLimitPerMin > 0 {
		log.Warn().Msg("REDIS_URL is empty: request throttling is per process")
	}

	return nil
}

// Markers returns the configured sensitivity markers with blanks removed.
// NSFM_WORDS is split on commas, so pieces of a /pattern/ that itself
// contains commas (such as {2,3}) are joined back until the closing slash.
func (c *Config) Markers() []string {
	markers := make([]string, 0, len(c.NSFMWords))
	pending := ""
	open := false
	for _, w := range c.NSFMWords {
		if open {
			pending += "," + w
		} else {
			pending = strings.TrimSpace(w)
			open = strings.HasPrefix(pending, "/")
		}
		if open && (len(strings.TrimSpace(pending)) < 2 || !strings.HasSuffix(strings.TrimSpace(pending), "/")) {
			continue
		}
		open = false
		if w = strings.TrimSpace(pending); w != "" {
			markers = append(markers, w)
		}
	}
	if w := strings.TrimSpace(pending); open && w != "" {
		markers = append(markers, w)
	}
	return markers
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
