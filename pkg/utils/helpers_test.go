package utils_test

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/pkg/utils"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	first := utils.GenerateRequestID()
	second := utils.GenerateRequestID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short strings pass through", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "abc", utils.Truncate("abc", 3))
		assert.Equal(t, "abc", utils.Truncate("abc", 10))
	})

	t.Run("long strings get an ellipsis", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "abcde...", utils.Truncate("abcdefgh", 5))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		t.Parallel()

		// The rupee sign occupies bytes 2 through 4.
		got := utils.Truncate("ab₹cd", 3)
		assert.Equal(t, "ab...", got)
		assert.True(t, utf8.ValidString(got))
	})
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "500µs", utils.FormatDuration(500*time.Microsecond))
	assert.Equal(t, "1.23s", utils.FormatDuration(1234567*time.Microsecond))
}

func TestGetStringOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "value", utils.GetStringOrDefault("value", "fallback"))
	assert.Equal(t, "fallback", utils.GetStringOrDefault("", "fallback"))
}
