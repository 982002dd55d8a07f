package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// KeyLocker serializes work per document key, such as the read-then-write
// cycle of a status change on one voucher. Unused keys are forgotten.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	holders int // goroutines holding or waiting for the lock
}

func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until the combined key is free and returns the release func.
// Lock("Invoice", id) and Lock("Invoice", other) do not block each other.
// Calling the release func more than once has no effect.
func (kl *KeyLocker) Lock(keys ...any) func() {
	key := lockKey(keys)

	kl.mu.Lock()
	lock, ok := kl.locks[key]
	if !ok {
		lock = &keyLock{}
		kl.locks[key] = lock
	}
	lock.holders++
	kl.mu.Unlock()

	lock.Lock()
	var released atomic.Bool
	return func() {
		if !released.CompareAndSwap(false, true) {
			return
		}
		lock.Unlock()
		kl.mu.Lock()
		if lock.holders--; lock.holders == 0 {
			delete(kl.locks, key)
		}
		kl.mu.Unlock()
	}
}

// Len returns the number of keys currently held or waited for.
func (kl *KeyLocker) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}

func lockKey(keys []any) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, ":")
}
