// ABOUTME: Direction enum naming which platform originated a relayed message.
// ABOUTME: Tokens are fixed literals reused in snapshot entry keys for file compatibility.

package messagemap

import "strings"

// Direction encodes which platform the original (non-relayed) message came
// from. The two values are the only valid directions; their string tokens
// appear verbatim in snapshot entry keys and must not change.
type Direction string

const (
	DiscordToTelegram Direction = "d2t"
	TelegramToDiscord Direction = "t2d"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DiscordToTelegram || d == TelegramToDiscord
}

// entryKey builds the composite index key for one relay event's origin side.
// Format: "<directionToken> <originId>", kept stable for snapshot
// compatibility.
func entryKey(dir Direction, fromID string) string {
	return string(dir) + " " + fromID
}

// splitEntryKey recovers the origin id from an entry key by splitting on the
// first space. ok is false for keys without a separator.
func splitEntryKey(key string) (origin string, ok bool) {
	_, origin, ok = strings.Cut(key, " ")
	return origin, ok
}
