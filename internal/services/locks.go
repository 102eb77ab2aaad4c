package services

import (
	"fmt"
	"sync"
)

// KeyedMutex serializes read-modify-write sequences per aggregate id. One
// instance is shared by every service that mutates users, so cross-service
// flows (session completion, task submission) exclude each other on the same
// user key. Entries are reference-counted and dropped once the last holder
// releases, so the map does not grow with the id space.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if !ok {
		entry = &keyedLock{}
		km.locks[key] = entry
	}
	entry.refs++
	km.mu.Unlock()

	entry.mu.Lock()
}

func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	entry, ok := km.locks[key]
	if !ok {
		km.mu.Unlock()
		panic("KeyedMutex: unlock of unheld key " + key)
	}
	entry.refs--
	if entry.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	entry.mu.Unlock()
}

func sessionKey(id uint) string { return fmt.Sprintf("session:%d", id) }
func userKey(id uint) string    { return fmt.Sprintf("user:%d", id) }
func taskKey(id uint) string    { return fmt.Sprintf("task:%d", id) }
