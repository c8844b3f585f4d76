package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
	"github.com/kenvexar/discord-obsidian-memo-bot/storage"
)

func newTestIndex(t *testing.T) storage.NoteIndex {
	t.Helper()
	index, _, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func testEntry(text string) *storage.IndexEntry {
	return &storage.IndexEntry{
		Fingerprint: core.FingerprintOf(text, "memo"),
		FilePath:    "00_Inbox/" + text + ".md",
		Folder:      "00_Inbox",
		AIProcessed: true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestNoteIndex_PutGet(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	entry := testEntry("hello")
	require.NoError(t, index.Put(ctx, entry))

	got, err := index.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, entry.FilePath, got.FilePath)
	assert.Equal(t, entry.Folder, got.Folder)
	assert.True(t, got.AIProcessed)
}

func TestNoteIndex_GetNotFound(t *testing.T) {
	index := newTestIndex(t)

	_, err := index.Get(context.Background(), core.FingerprintOf("absent", ""))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNoteIndex_PutDuplicate(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	entry := testEntry("dup")
	require.NoError(t, index.Put(ctx, entry))

	second := testEntry("dup")
	second.FilePath = "03_Ideas/dup.md"
	err := index.Put(ctx, second)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The original entry must be unchanged.
	got, err := index.Get(ctx, entry.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, entry.FilePath, got.FilePath)
}

func TestNoteIndex_ConcurrentPutSameFingerprint(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = index.Put(ctx, testEntry("contended"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, storage.ErrDuplicateKey)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent Put may win")
}

func TestNoteIndex_Count(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, index.Put(ctx, testEntry(text)))
	}

	count, err = index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNoteIndex_ForEach(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	want := map[core.Fingerprint]string{}
	for _, text := range []string{"alpha", "beta", "gamma"} {
		entry := testEntry(text)
		want[entry.Fingerprint] = entry.FilePath
		require.NoError(t, index.Put(ctx, entry))
	}

	seen := map[core.Fingerprint]string{}
	err := index.ForEach(ctx, func(entry *storage.IndexEntry) error {
		seen[entry.Fingerprint] = entry.FilePath
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, seen)
}

func TestNoteIndex_ForEachStopsOnError(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, index.Put(ctx, testEntry(text)))
	}

	stop := assert.AnError
	visited := 0
	err := index.ForEach(ctx, func(entry *storage.IndexEntry) error {
		visited++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, visited)
}

func TestNoteIndex_ClosedOperations(t *testing.T) {
	index, _, err := NewMemoryIndex()
	require.NoError(t, err)
	require.NoError(t, index.Close())

	_, err = index.Get(context.Background(), core.FingerprintOf("x", ""))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = index.Put(context.Background(), testEntry("x"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = index.Count(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
