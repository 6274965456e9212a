package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleKey(t *testing.T) {
	assert.Equal(t, "listserver:throttle:ip:203.0.113.9", ThrottleKey("ip:203.0.113.9"))
}

func TestNewClient(t *testing.T) {
	t.Run("rejects malformed url", func(t *testing.T) {
		_, err := NewClient(context.Background(), "not a url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse redis url")
	})

	t.Run("fails when server unreachable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := NewClient(ctx, "redis://127.0.0.1:1/0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping redis")
	})
}
