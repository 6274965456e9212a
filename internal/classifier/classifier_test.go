package classifier

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_IsSensitive(t *testing.T) {
	c := New(
		Literal{Text: "nsfw"},
		Pattern{Re: regexp.MustCompile(`\bporn`)},
	)

	tests := []struct {
		name     string
		title    string
		expected bool
	}{
		{"empty title", "", false},
		{"clean title", "Sunday sketching", false},
		{"literal match", "late night nsfw jam", true},
		{"literal match ignores case", "NSFW Figure Drawing", true},
		{"pattern match", "Porn parody comics", true},
		{"pattern respects word boundary", "antiporn league", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.IsSensitive(tc.title))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("splits literals and patterns", func(t *testing.T) {
		c, err := Parse([]string{"NSFM", `/\d{2}\+/`})
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())

		assert.IsType(t, Literal{}, c.markers[0])
		assert.Equal(t, Literal{Text: "nsfm"}, c.markers[0])
		assert.IsType(t, Pattern{}, c.markers[1])

		assert.True(t, c.IsSensitive("nsfm stuff"))
		assert.True(t, c.IsSensitive("strictly 18+"))
		assert.False(t, c.IsSensitive("all ages"))
	})

	t.Run("patterns ignore case", func(t *testing.T) {
		c, err := Parse([]string{`/\bXXX\b/`})
		require.NoError(t, err)

		assert.True(t, c.IsSensitive("Late XXX jam"))
		assert.True(t, c.IsSensitive("late xxx jam"))
	})

	t.Run("treats a lone slash as a literal", func(t *testing.T) {
		c, err := Parse([]string{"/"})
		require.NoError(t, err)
		assert.Equal(t, Literal{Text: "/"}, c.markers[0])
	})

	t.Run("rejects invalid patterns", func(t *testing.T) {
		_, err := Parse([]string{"/(unclosed/"})
		assert.Error(t, err)
	})

	t.Run("empty list flags nothing", func(t *testing.T) {
		c, err := Parse(nil)
		require.NoError(t, err)
		assert.False(t, c.IsSensitive("anything at all"))
	})
}
