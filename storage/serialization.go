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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// IndexEntryMUS is the MUS serializer for IndexEntry. Written by hand:
// the entry is a flat record of strings, a bool, and a timestamp, which
// the ord and varint primitives cover directly.
var IndexEntryMUS = indexEntryMUS{}

type indexEntryMUS struct{}

// Marshal writes v into bs and returns the number of bytes written.
// bs must be at least Size(v) bytes.
func (indexEntryMUS) Marshal(v IndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Fingerprint), bs)
	n += ord.String.Marshal(v.FilePath, bs[n:])
	n += ord.String.Marshal(v.Folder, bs[n:])
	n += ord.Bool.Marshal(v.AIProcessed, bs[n:])
	n += varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
	return n
}

// Unmarshal reads an IndexEntry from bs.
func (indexEntryMUS) Unmarshal(bs []byte) (v IndexEntry, n int, err error) {
	var (
		fingerprint string
		micros      int64
		m           int
	)

	fingerprint, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Fingerprint = core.Fingerprint(fingerprint)

	v.FilePath, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}

	v.Folder, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}

	v.AIProcessed, m, err = ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}

	micros, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	v.CreatedAt = time.UnixMicro(micros).UTC()

	return v, n, nil
}

// Size returns the number of bytes Marshal will write for v.
func (indexEntryMUS) Size(v IndexEntry) (size int) {
	size = ord.String.Size(string(v.Fingerprint))
	size += ord.String.Size(v.FilePath)
	size += ord.String.Size(v.Folder)
	size += ord.Bool.Size(v.AIProcessed)
	size += varint.Int64.Size(v.CreatedAt.UnixMicro())
	return size
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(*entry))
	IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*IndexEntry, error) {
	entry, _, err := IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
