package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidSessionID(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"abc-123", true},
		{"2d1c:ef0a-9", true},
		{strings.Repeat("a", 64), true},
		{"", false},
		{strings.Repeat("a", 65), false},
		{"has space", false},
		{"under_score", false},
		{"abc\n", false},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidSessionID(tc.id))
		})
	}
}

func TestIsValidHostname(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"example.com", true},
		{"draw.example-site.org", true},
		{"EXAMPLE.COM", true},
		{"localhost", false},
		{"-bad.example.com", false},
		{"bad-.example.com", false},
		{"under_score.example.com", false},
		{strings.Repeat("a", 64) + ".com", false},
		{strings.Repeat("a.", 127) + "com", false},
	}

	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidHostname(tc.host))
		})
	}
}

func TestParseIP(t *testing.T) {
	t.Run("parses IPv4", func(t *testing.T) {
		require.NotNil(t, ParseIP("203.0.113.5"))
	})

	t.Run("parses bracketed IPv6", func(t *testing.T) {
		require.NotNil(t, ParseIP("[2001:db8::1]"))
	})

	t.Run("returns nil for names", func(t *testing.T) {
		assert.Nil(t, ParseIP("example.com"))
	})
}

func TestIsPublicIP(t *testing.T) {
	assert.True(t, IsPublicIP(ParseIP("203.0.113.5")))
	assert.True(t, IsPublicIP(ParseIP("2001:db8::1")))
	assert.False(t, IsPublicIP(ParseIP("10.0.0.1")))
	assert.False(t, IsPublicIP(ParseIP("192.168.1.20")))
	assert.False(t, IsPublicIP(ParseIP("127.0.0.1")))
	assert.False(t, IsPublicIP(ParseIP("::1")))
	assert.False(t, IsPublicIP(ParseIP("169.254.0.3")))
	assert.False(t, IsPublicIP(ParseIP("0.0.0.0")))
}
