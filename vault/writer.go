// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
	"github.com/kenvexar/discord-obsidian-memo-bot/retry"
	"github.com/kenvexar/discord-obsidian-memo-bot/storage"
)

// Writer renders notes and persists them into the vault exactly once per
// fingerprint. The existence check is keyed on the fingerprint index,
// not the file path, since classification may change the path over time.
type Writer struct {
	root         string
	index        storage.NoteIndex
	locks        *keyedMutex
	writePolicy  retry.Policy
	logger       *slog.Logger
	now          func() time.Time

	// pathMu serializes path resolution and rename so two notes with
	// the same slug but different fingerprints never overwrite each
	// other.
	pathMu sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithWriteRetries sets the writer's own bounded retry budget for
// storage faults. Default is 3 attempts total.
func WithWriteRetries(attempts int) Option {
	return func(w *Writer) error {
		if attempts < 1 {
			attempts = 1
		}
		w.writePolicy.MaxAttempts = attempts
		return nil
	}
}

// NewWriter creates a note writer rooted at the vault directory,
// consulting the given fingerprint index before every write.
func NewWriter(root string, index storage.NoteIndex, opts ...Option) (*Writer, error) {
	if root == "" {
		return nil, ErrRootRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	w := &Writer{
		root:  root,
		index: index,
		locks: newKeyedMutex(),
		writePolicy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   50 * time.Millisecond,
			MaxDelay:    time.Second,
		},
		logger: slog.Default().With("component", "note-writer"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Write renders and persists a note for the item into the decided
// folder.
//
// Returns ErrDuplicate with the existing record when a note for this
// fingerprint already exists, and a wrapped ErrStorage when the write
// fails after the writer's retry budget. The document reaches its final
// path via a temporary file and an atomic rename, so a crash mid-write
// never leaves a half-written note visible to the vault.
func (w *Writer) Write(ctx context.Context, item *core.ContentItem, enrichment *core.EnrichmentResult, decision core.ClassificationDecision) (*core.NoteRecord, error) {
	fingerprint := item.Fingerprint()

	w.locks.lock(fingerprint)
	defer w.locks.unlock(fingerprint)

	existing, err := w.index.Get(ctx, fingerprint)
	if err == nil {
		w.logger.Debug("note already exists",
			"fingerprint", fingerprint,
			"path", existing.FilePath)
		return recordFromEntry(existing), ErrDuplicate
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: index lookup: %w", ErrStorage, err)
	}

	now := w.now().UTC()
	fields := fieldsFor(item, enrichment, now)
	frontmatter, document, err := renderNote(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	relPath, err := retry.Do(ctx, w.writePolicy, func(ctx context.Context) (string, error) {
		return w.persist(decision.TargetFolder, fields, document)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	entry := &storage.IndexEntry{
		Fingerprint: fingerprint,
		FilePath:    relPath,
		Folder:      decision.TargetFolder,
		AIProcessed: fields.AIProcessed,
		CreatedAt:   now,
	}
	if err := w.index.Put(ctx, entry); err != nil {
		// The per-fingerprint lock makes a duplicate here unlikely, but
		// another process sharing the vault can still win the race.
		os.Remove(filepath.Join(w.root, relPath))
		if errors.Is(err, storage.ErrDuplicateKey) {
			if winner, getErr := w.index.Get(ctx, fingerprint); getErr == nil {
				return recordFromEntry(winner), ErrDuplicate
			}
		}
		return nil, fmt.Errorf("%w: index put: %w", ErrStorage, err)
	}

	w.logger.Info("note written",
		"path", relPath,
		"folder", decision.TargetFolder,
		"ai_processed", fields.AIProcessed)

	return &core.NoteRecord{
		FilePath:    relPath,
		Frontmatter: frontmatter,
		Body:        document,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		AIProcessed: fields.AIProcessed,
	}, nil
}

// persist writes the document to a collision-free path inside the folder
// and returns the path relative to the vault root.
func (w *Writer) persist(folder string, fields noteFields, document string) (string, error) {
	dir := filepath.Join(w.root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-note-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(document); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	slug := slugify(fields.Title, fields.Fingerprint)

	w.pathMu.Lock()
	defer w.pathMu.Unlock()

	relPath, absPath := w.resolvePath(folder, slug)
	if err := os.Rename(tmpPath, absPath); err != nil {
		return "", err
	}
	renamed = true
	return relPath, nil
}

// resolvePath picks the first free filename for a slug within a folder,
// appending a numeric suffix on collision. Never overwrites.
func (w *Writer) resolvePath(folder, slug string) (relPath, absPath string) {
	for i := 1; ; i++ {
		name := slug + ".md"
		if i > 1 {
			name = fmt.Sprintf("%s-%d.md", slug, i)
		}
		relPath = filepath.Join(folder, name)
		absPath = filepath.Join(w.root, relPath)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return relPath, absPath
		}
	}
}

// recordFromEntry reconstructs the caller-visible note record for an
// already persisted note. Body and frontmatter stay with the vault; the
// record carries what the pipeline needs to acknowledge the item.
func recordFromEntry(entry *storage.IndexEntry) *core.NoteRecord {
	return &core.NoteRecord{
		FilePath:    entry.FilePath,
		Fingerprint: entry.Fingerprint,
		CreatedAt:   entry.CreatedAt,
		AIProcessed: entry.AIProcessed,
	}
}
