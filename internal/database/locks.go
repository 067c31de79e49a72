package database

import "sync"

// KeyedMutex serializes mutations per entity id. SQLite gives us
// statement-level atomicity, but read-modify-write sequences (list
// compaction, paired friend records, reaction counters) span several
// statements and would otherwise race across connections.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entityLock)}
}

// Lock key constructors. Every caller mutating the same entity must build
// its key through these so contention lands on one lock.

func WatchlistKey(id string) string {
	return "watchlist:" + id
}

func ContentKey(id string) string {
	return "content:" + id
}

// PairKey builds the key for a friend pair from the unordered profile
// ids, so two users racing each other contend on one lock.
func PairKey(profileA, profileB string) string {
	if profileB < profileA {
		profileA, profileB = profileB, profileA
	}
	return "friends:" + profileA + ":" + profileB
}

// Lock acquires the mutex for key, blocking until it is available.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &entityLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the mutex for key. The per-key lock is dropped from the
// map once nothing is waiting on it, so the map does not grow unbounded.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	l.mu.Unlock()
}
