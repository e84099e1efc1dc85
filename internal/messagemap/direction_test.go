// ABOUTME: Tests for direction validation and entry-key formatting.
// ABOUTME: The key format is load-bearing for snapshot compatibility.

package messagemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection_Valid(t *testing.T) {
	assert.True(t, DiscordToTelegram.Valid())
	assert.True(t, TelegramToDiscord.Valid())
	assert.False(t, Direction("").Valid())
	assert.False(t, Direction("d2d").Valid())
}

func TestEntryKey_Format(t *testing.T) {
	assert.Equal(t, "t2d 111", entryKey(TelegramToDiscord, "111"))
	assert.Equal(t, "d2t 42", entryKey(DiscordToTelegram, "42"))
}

func TestSplitEntryKey(t *testing.T) {
	origin, ok := splitEntryKey("t2d 111")
	assert.True(t, ok)
	assert.Equal(t, "111", origin)

	// Origin ids may themselves contain spaces; only the first is the separator.
	origin, ok = splitEntryKey("d2t a b")
	assert.True(t, ok)
	assert.Equal(t, "a b", origin)

	_, ok = splitEntryKey("malformed")
	assert.False(t, ok)
}
