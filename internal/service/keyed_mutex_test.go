package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("Serializes access per key", func(t *testing.T) {
		km := newKeyedMutex()
		const goroutines = 50

		counter := 0
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				unlock := km.Lock("story-1")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, goroutines, counter)
	})

	t.Run("Different keys do not block each other", func(t *testing.T) {
		km := newKeyedMutex()

		unlockA := km.Lock("a")
		done := make(chan struct{})
		go func() {
			unlockB := km.Lock("b")
			unlockB()
			close(done)
		}()
		<-done
		unlockA()
	})

	t.Run("Entry is released once unused", func(t *testing.T) {
		km := newKeyedMutex()

		unlock := km.Lock("k")
		unlock()

		km.mu.Lock()
		defer km.mu.Unlock()
		assert.Empty(t, km.locks)
	})
}
