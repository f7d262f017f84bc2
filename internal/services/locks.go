package services

import (
	"sort"
	"sync"
)

// keyedMutex serializes work per key inside this process.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock locks every key, in sorted order so overlapping callers cannot
// deadlock, and returns the matching unlock.
func (k *keyedMutex) Lock(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	var held []*sync.Mutex
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		m, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
		mu := m.(*sync.Mutex)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
