package middleware

import (
	"context"
	"time"
)

// Limiter decides whether another request under key fits in the window.
// service.RateLimiter (Redis) and MemoryLimiter implement it.
type Limiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, resetAt time.Time)
}
