package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLockerExclusion(t *testing.T) {
	l := NewKeyedLocker()

	assert.True(t, l.TryAcquire("script-1"))
	assert.False(t, l.TryAcquire("script-1"))
	assert.True(t, l.TryAcquire("script-2"))

	l.Release("script-1")
	assert.True(t, l.TryAcquire("script-1"))
}

func TestKeyedLockerReleaseUnheld(t *testing.T) {
	l := NewKeyedLocker()
	l.Release("missing")
	assert.False(t, l.Held("missing"))
}

func TestKeyedLockerConcurrentSingleWinner(t *testing.T) {
	l := NewKeyedLocker()

	const attempts = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire("same-key") {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}
