package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a deterministic digest identifying a logical content item.
// It is the cache key and the note-deduplication key: two content items
// with equal fingerprints resolve to the same stored note.
type Fingerprint string

// FingerprintOf computes the fingerprint of a content item from its
// normalized text and source context using BLAKE2b hashing.
// Identical (normalized text, source context) pairs produce identical
// fingerprints.
func FingerprintOf(text, sourceContext string) Fingerprint {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(NormalizeText(text)))
	h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	h.Write([]byte(sourceContext))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// NormalizeText collapses whitespace runs to single spaces and trims the
// result. Normalization happens before fingerprinting so duplicate chat
// events differing only in whitespace dedupe to the same note.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// AttachmentRef references an attachment carried alongside a content item.
// Attachments themselves are owned by the chat platform; only the
// reference is rendered into the persisted note.
type AttachmentRef struct {
	Filename string
	URL      string
}

// ContentItem is a single piece of user-authored content received from
// the chat platform. It is immutable once created and consumed exactly
// once by the pipeline; it is never persisted itself.
type ContentItem struct {
	ID            string
	Text          string
	Attachments   []AttachmentRef
	SourceContext string // Logical channel the item arrived on, used only as a classification hint
	ReceivedAt    time.Time
}

// Fingerprint computes the item's fingerprint.
func (c *ContentItem) Fingerprint() Fingerprint {
	return FingerprintOf(c.Text, c.SourceContext)
}

// EnrichmentResult holds the AI-derived metadata for a content item.
// Results are never mutated after creation; a re-enrichment produces a
// new result that may replace the cache entry but never rewrites an
// existing persisted note.
type EnrichmentResult struct {
	Summary    string
	Tags       []string // Normalized: lowercase, deduplicated, no '#' prefix
	Category   string
	Confidence float64 // In [0, 1]
	Reasoning  string
	ComputedAt time.Time
}

// ClassificationDecision names the vault folder a note belongs in and
// why. Derived deterministically from the enrichment result plus fallback
// heuristics on the raw text.
type ClassificationDecision struct {
	TargetFolder string
	Rationale    string
}

// NoteRecord describes a note persisted to the vault. Created at most
// once per fingerprint; after a successful write the vault owns the note
// and the pipeline no longer tracks it.
type NoteRecord struct {
	FilePath    string // Relative to the vault root
	Frontmatter map[string]any
	Body        string
	Fingerprint Fingerprint
	CreatedAt   time.Time
	AIProcessed bool
}

// Status is the terminal state of a pipeline invocation.
type Status int

const (
	// StatusCompleted means a note was written with full AI enrichment,
	// or an identical note already existed (idempotence short-circuit).
	StatusCompleted Status = iota + 1
	// StatusDegraded means a note was written without AI enrichment.
	StatusDegraded
	// StatusFailed means no note was written.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PipelineOutcome is returned to the chat-platform caller for every
// processed item. Completed and Degraded both carry a note record; only
// Failed carries an error.
type PipelineOutcome struct {
	Status Status
	Note   *NoteRecord
	Err    error
}
