// Package userlock serializes document mutations per user. The external
// document API has no revision check, so two concurrent read-modify-write
// cycles against the same document would compute positions from stale
// snapshots. Holding the user's lock for the whole cycle closes that race
// within this process.
package userlock

import (
	"strings"
	"sync"
)

type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// Do runs fn while holding the lock for key. Callers pass a stable user
// identity (team:user) as the key.
func (r *Registry) Do(key string, fn func()) {
	if r == nil || fn == nil {
		return
	}
	key = strings.TrimSpace(key)

	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	fn()
}
