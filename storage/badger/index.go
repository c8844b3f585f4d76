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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
	"github.com/kenvexar/discord-obsidian-memo-bot/storage"
)

// putConflictRetries bounds re-runs of the Put transaction when badger
// reports a commit conflict; the re-run then observes the winner's entry.
const putConflictRetries = 3

// NoteIndexRepository implements storage.NoteIndex for BadgerDB.
type NoteIndexRepository struct {
	backend *Backend
}

var _ storage.NoteIndex = (*NoteIndexRepository)(nil)

// NewNoteIndexRepository creates a NoteIndexRepository on a backend.
func NewNoteIndexRepository(backend *Backend) *NoteIndexRepository {
	return &NoteIndexRepository{backend: backend}
}

// Get retrieves the index entry for a fingerprint.
func (r *NoteIndexRepository) Get(ctx context.Context, fingerprint core.Fingerprint) (*storage.IndexEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *storage.IndexEntry
	err := r.backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeNoteKey(fingerprint))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalIndexEntry(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put records a new entry. The insert is check-and-set within one
// transaction, so two concurrent writers for the same fingerprint cannot
// both succeed; the loser gets ErrDuplicateKey.
func (r *NoteIndexRepository) Put(ctx context.Context, entry *storage.IndexEntry) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	key := makeNoteKey(entry.Fingerprint)
	value := storage.MarshalIndexEntry(entry)

	for attempt := 0; ; attempt++ {
		err := r.backend.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return storage.ErrDuplicateKey
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, value)
		})
		if errors.Is(err, badger.ErrConflict) && attempt < putConflictRetries {
			continue
		}
		return err
	}
}

// Count returns the number of indexed notes.
func (r *NoteIndexRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = notePrefix()
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ForEach visits every index entry in fingerprint order.
func (r *NoteIndexRepository) ForEach(ctx context.Context, fn func(*storage.IndexEntry) error) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = notePrefix()
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry *storage.IndexEntry
			err := it.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying backend.
func (r *NoteIndexRepository) Close() error {
	return r.backend.Close()
}
