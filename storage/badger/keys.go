package badger

import (
	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// Key prefixes for different data types
const (
	noteEntryPrefix = "note"
)

// makeNoteKey generates a key for an index entry by fingerprint.
// Fingerprints are fixed-width hex, so lexicographic iteration over the
// prefix visits entries in fingerprint order.
func makeNoteKey(fingerprint core.Fingerprint) []byte {
	return []byte(noteEntryPrefix + ":" + string(fingerprint))
}

// notePrefix returns the iteration prefix for all index entries.
func notePrefix() []byte {
	return []byte(noteEntryPrefix + ":")
}
