package app

import (
	"sort"
	"sync"
)

// lockSet serializes read-modify-write sequences per aggregate.
// Keys are always taken in sorted order, and venue keys sort before
// event keys, so cross-aggregate operations cannot deadlock.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*refLock)}
}

func venueKey(id string) string { return "0:venue:" + id }
func eventKey(id string) string { return "1:event:" + id }

// Lock acquires every key and returns the matching unlock func.
func (s *lockSet) Lock(keys ...string) func() {
	keys = uniqueSorted(keys)

	held := make([]*refLock, 0, len(keys))
	for _, key := range keys {
		l := s.acquire(key)
		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			s.release(keys[i])
		}
	}
}

func (s *lockSet) acquire(key string) *refLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &refLock{}
		s.locks[key] = l
	}
	l.refs++
	return l
}

func (s *lockSet) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
