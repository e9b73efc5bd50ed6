package services

import "sync"

// matchLocks hands out one mutex per match id so every live operation on a
// match is serialized while different matches proceed in parallel. Entries
// are never removed; the map is bounded by the number of matches touched in
// a process lifetime.
type matchLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[int]*sync.Mutex)}
}

func (m *matchLocks) lock(matchID int) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[matchID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
