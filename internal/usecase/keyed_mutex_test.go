package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()

	counters := map[string]int{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []string{"a", "b", "c"}[i%3]
			unlock := k.Lock(key)
			defer unlock()

			mu.Lock()
			counters[key]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, k.size())
	assert.Equal(t, 34, counters["a"])
	assert.Equal(t, 33, counters["b"])
	assert.Equal(t, 33, counters["c"])
}
