package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

func TestIndexEntrySerialization_RoundTrip(t *testing.T) {
	entry := &IndexEntry{
		Fingerprint: core.FingerprintOf("hello world", "memo"),
		FilePath:    "07_Tasks/finish-the-report.md",
		Folder:      "07_Tasks",
		AIProcessed: true,
		CreatedAt:   time.Date(2025, 6, 1, 12, 30, 45, 123456000, time.UTC),
	}

	data := MarshalIndexEntry(entry)
	require.NotEmpty(t, data)

	got, err := UnmarshalIndexEntry(data)
	require.NoError(t, err)

	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, entry.FilePath, got.FilePath)
	assert.Equal(t, entry.Folder, got.Folder)
	assert.Equal(t, entry.AIProcessed, got.AIProcessed)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt), "timestamp should survive at microsecond precision")
}

func TestIndexEntrySerialization_ZeroFields(t *testing.T) {
	entry := &IndexEntry{
		Fingerprint: "",
		FilePath:    "",
		Folder:      "",
		AIProcessed: false,
		CreatedAt:   time.UnixMicro(0).UTC(),
	}

	got, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.False(t, got.AIProcessed)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
}

func TestIndexEntrySerialization_SizeMatchesMarshal(t *testing.T) {
	entry := IndexEntry{
		Fingerprint: core.FingerprintOf("sizing", ""),
		FilePath:    "00_Inbox/sizing.md",
		Folder:      "00_Inbox",
		CreatedAt:   time.Now().UTC(),
	}

	buf := make([]byte, IndexEntryMUS.Size(entry))
	n := IndexEntryMUS.Marshal(entry, buf)
	assert.Equal(t, len(buf), n, "Size must predict exactly what Marshal writes")
}

func TestUnmarshalIndexEntry_Corrupt(t *testing.T) {
	_, err := UnmarshalIndexEntry([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
