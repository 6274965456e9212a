package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/drawpile/listserver-go/internal/errors"
)

// ThrottleMiddleware caps requests per client address. It is a coarse guard
// in front of the per-address announcement limit kept by the store.
type ThrottleMiddleware struct {
	limiter Limiter
	limit   int
	window  time.Duration
	prefix  string
}

func NewThrottleMiddleware(limiter Limiter, limit int, window time.Duration, prefix string) *ThrottleMiddleware {
	return &ThrottleMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *ThrottleMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := GetClientIP(r.Context())
		key := m.prefix + ":" + ip
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !allowed {
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			if secondsLeft < 1 {
				secondsLeft = 1
			}
			log.Warn().Str("ip", ip).Str("scope", m.prefix).Msg("request throttled")
			w.Header().Set("Retry-After", strconv.Itoa(secondsLeft))
			writeError(w, apperrors.Throttled())
			return
		}

		next.ServeHTTP(w, r)
	})
}
