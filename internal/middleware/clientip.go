package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/drawpile/listserver-go/internal/util"
)

type contextKey string

const ClientIPContextKey contextKey = "clientIP"

// GetClientIP returns the address resolved by ClientIPMiddleware, or an
// empty string when the middleware did not run.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPContextKey).(string); ok {
		return ip
	}
	return ""
}

// ClientIPMiddleware resolves the announcing client's address. The proxy
// header is only consulted when configured; otherwise any client could
// spoof its address and sidestep per-address limits.
type ClientIPMiddleware struct {
	trustedHeader string
}

func NewClientIPMiddleware(trustedHeader string) *ClientIPMiddleware {
	return &ClientIPMiddleware{trustedHeader: trustedHeader}
}

func (m *ClientIPMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientIPContextKey, m.resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *ClientIPMiddleware) resolve(r *http.Request) string {
	if m.trustedHeader != "" {
		value := r.Header.Get(m.trustedHeader)
		// X-Forwarded-For style lists carry the original client first
		if first, _, _ := strings.Cut(value, ","); first != "" {
			if ip := util.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := util.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}
