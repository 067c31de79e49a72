package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()

	const workers = 16
	const iterations = 100
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				k.Lock("entity-1")
				counter++
				k.Unlock("entity-1")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := NewKeyedMutex()

	k.Lock("entity-1")
	// A different key must not block behind entity-1.
	done := make(chan struct{})
	go func() {
		k.Lock("entity-2")
		k.Unlock("entity-2")
		close(done)
	}()
	<-done
	k.Unlock("entity-1")
}

func TestLockKeys(t *testing.T) {
	assert.Equal(t, "watchlist:wl-1", WatchlistKey("wl-1"))
	assert.Equal(t, "content:c-1", ContentKey("c-1"))

	// Key constructors for pairs are order independent so both sides of a
	// friendship contend on the same lock.
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "friends:a:b", PairKey("b", "a"))
}

func TestKeyedMutexReleasesMapEntries(t *testing.T) {
	k := NewKeyedMutex()

	k.Lock("entity-1")
	k.Unlock("entity-1")
	k.Lock("entity-2")
	k.Unlock("entity-2")

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
