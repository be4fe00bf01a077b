package service

import (
	"sync"

	"github.com/google/uuid"
)

// dayLock serializes writes per (user, calendar day). SaveActivity's
// read-then-write sequence is not wrapped in a store transaction, so two
// concurrent saves for the same day could both miss the existence check and
// insert twice; holding the pair's mutex across the whole sequence closes
// that race inside the process.
type dayLock struct {
	mu    sync.Mutex
	locks map[string]*dayLockEntry
}

// dayLockEntry is refcounted so entries die with their last holder and the
// map doesn't accumulate one mutex per user per day.
type dayLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newDayLock() *dayLock {
	return &dayLock{
		locks: make(map[string]*dayLockEntry),
	}
}

func (dl *dayLock) lock(uid uuid.UUID, dayKey string) func() {
	key := uid.String() + ":" + dayKey
	dl.mu.Lock()
	entry, ok := dl.locks[key]
	if !ok {
		entry = &dayLockEntry{}
		dl.locks[key] = entry
	}
	entry.refs++
	dl.mu.Unlock()
	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		dl.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(dl.locks, key)
		}
		dl.mu.Unlock()
	}
}
