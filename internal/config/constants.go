package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const PurgeJobInterval = time.Hour

// Port announced sessions listen on when the announcement omits one
const DefaultSessionPort = 27750

// Length of the per-listing update key
const UpdateKeyLength = 16

// Request throttle window for write endpoints
const RequestRateLimitWindow = time.Minute

// Header carrying the per-listing update key
const UpdateKeyHeader = "X-Update-Key"

// Root metadata
const (
	APIName    = "drawpile-session-list"
	APIVersion = "1.1"
)
