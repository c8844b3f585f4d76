package vault

import (
	"sync"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// keyedMutex provides per-fingerprint mutual exclusion so unrelated
// writes proceed in parallel while two writers racing on identical
// content serialize, letting the second observe the first's completed
// write through the index.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[core.Fingerprint]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[core.Fingerprint]*lockEntry)}
}

func (k *keyedMutex) lock(fingerprint core.Fingerprint) {
	k.mu.Lock()
	entry, ok := k.locks[fingerprint]
	if !ok {
		entry = &lockEntry{}
		k.locks[fingerprint] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

func (k *keyedMutex) unlock(fingerprint core.Fingerprint) {
	k.mu.Lock()
	entry := k.locks[fingerprint]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, fingerprint)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
