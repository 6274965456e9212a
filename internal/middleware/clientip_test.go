package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPMiddleware(t *testing.T) {
	resolve := func(m *ClientIPMiddleware, r *http.Request) string {
		var got string
		handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetClientIP(r.Context())
		}))
		handler.ServeHTTP(httptest.NewRecorder(), r)
		return got
	}

	tests := []struct {
		name       string
		header     string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "peer address without trusted header",
			remoteAddr: "203.0.113.9:51234",
			expected:   "203.0.113.9",
		},
		{
			name:       "ignores proxy headers when not trusted",
			remoteAddr: "203.0.113.9:51234",
			headers:    map[string]string{"X-Real-Ip": "198.51.100.1"},
			expected:   "203.0.113.9",
		},
		{
			name:       "uses trusted header",
			header:     "X-Real-IP",
			remoteAddr: "10.0.0.2:80",
			headers:    map[string]string{"X-Real-Ip": "198.51.100.1"},
			expected:   "198.51.100.1",
		},
		{
			name:       "takes first forwarded address",
			header:     "X-Forwarded-For",
			remoteAddr: "10.0.0.2:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			expected:   "198.51.100.7",
		},
		{
			name:       "falls back when header is garbage",
			header:     "X-Real-IP",
			remoteAddr: "10.0.0.2:80",
			headers:    map[string]string{"X-Real-Ip": "not-an-ip"},
			expected:   "10.0.0.2",
		},
		{
			name:       "ipv6 peer",
			remoteAddr: "[2001:db8::1]:443",
			expected:   "2001:db8::1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tc.expected, resolve(NewClientIPMiddleware(tc.header), req))
		})
	}

	t.Run("empty without middleware", func(t *testing.T) {
		assert.Empty(t, GetClientIP(httptest.NewRequest("GET", "/", nil).Context()))
	})
}
