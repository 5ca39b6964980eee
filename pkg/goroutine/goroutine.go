// Package goroutine keeps a process-wide list of named background goroutines
// so long-lived tasks can be observed and checked for leaks.
package goroutine

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	goroutineCounter uint64
	goroutineMap     sync.Map
)

// RegisterGoroutine records name and returns an ID for DeregisterGoroutine.
func RegisterGoroutine(name string) uint64 {
	id := atomic.AddUint64(&goroutineCounter, 1)
	goroutineMap.Store(id, name)
	return id
}

func DeregisterGoroutine(id uint64) {
	goroutineMap.Delete(id)
}

// Go runs fn in a goroutine that is registered under name while it runs.
func Go(name string, fn func()) {
	id := RegisterGoroutine(name)
	go func() {
		defer DeregisterGoroutine(id)
		fn()
	}()
}

// GetActiveGoroutines returns a snapshot of the registered goroutines by ID.
func GetActiveGoroutines() map[uint64]string {
	result := make(map[uint64]string)
	goroutineMap.Range(func(key, value interface{}) bool {
		result[key.(uint64)] = value.(string)
		return true
	})
	return result
}

// Named returns the sorted names of running goroutines that start with prefix.
func Named(prefix string) []string {
	var names []string
	goroutineMap.Range(func(_, value interface{}) bool {
		if name := value.(string); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return true
	})
	sort.Strings(names)
	return names
}
