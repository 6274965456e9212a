package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	t.Run("generates key of requested length", func(t *testing.T) {
		key, err := GenerateKey(16)
		require.NoError(t, err)
		assert.Len(t, key, 16)
	})

	t.Run("uses only allowed characters", func(t *testing.T) {
		key, err := GenerateKey(64)
		require.NoError(t, err)
		for _, c := range key {
			assert.True(t, strings.ContainsRune(UpdateKeyChars, c), "unexpected character %q", c)
		}
	})

	t.Run("generates unique keys", func(t *testing.T) {
		keys := make(map[string]bool)
		for i := 0; i < 100; i++ {
			key, err := GenerateKey(16)
			require.NoError(t, err)
			assert.False(t, keys[key], "duplicate key generated: %s", key)
			keys[key] = true
		}
	})
}

func TestUpdateKeyChars(t *testing.T) {
	t.Run("contains upper case letters and digits", func(t *testing.T) {
		assert.Len(t, UpdateKeyChars, 36)
		assert.Equal(t, strings.ToUpper(UpdateKeyChars), UpdateKeyChars)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	t.Run("returns true for equal strings", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("abc", "abc"))
	})

	t.Run("returns false for different strings", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("abc", "def"))
	})

	t.Run("returns false for different lengths", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("abc", "abcd"))
	})

	t.Run("returns false against empty key", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("", "ABCDEFGHIJKLMNOP"))
	})
}
