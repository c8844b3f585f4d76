package storage

import (
	"context"
	"time"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// IndexEntry is one row of the persistent fingerprint -> note index that
// lives alongside the vault. The index, not the file path, is what
// enforces at-most-one note per fingerprint: classification may place
// semantically identical content in different folders over time, so a
// filename or content scan alone is insufficient.
type IndexEntry struct {
	Fingerprint core.Fingerprint
	FilePath    string // Relative to the vault root
	Folder      string
	AIProcessed bool
	CreatedAt   time.Time
}

// NoteIndex provides operations for the persistent fingerprint index.
// Implementations must be thread-safe and support concurrent access.
type NoteIndex interface {
	// Get retrieves the entry for a fingerprint.
	// Returns ErrNotFound if no note exists for it.
	Get(ctx context.Context, fingerprint core.Fingerprint) (*IndexEntry, error)

	// Put records a newly written note. The insert is atomic: if an
	// entry for the fingerprint already exists, ErrDuplicateKey is
	// returned and the index is unchanged.
	Put(ctx context.Context, entry *IndexEntry) error

	// Count returns the number of indexed notes.
	Count(ctx context.Context) (int, error)

	// ForEach visits every entry in fingerprint order. Iteration stops
	// early if fn returns an error, which is then returned.
	ForEach(ctx context.Context, fn func(*IndexEntry) error) error

	// Close closes the index and releases resources.
	Close() error
}
