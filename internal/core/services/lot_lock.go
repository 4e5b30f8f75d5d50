package services

import "sync"

// LotLocker serialises check-then-claim sequences per lot. Reservation
// booking and space assignment share one instance so a capacity check and
// the write that depends on it are never interleaved with another claim.
type LotLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLotLocker() *LotLocker {
	return &LotLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the lot is free and returns the matching unlock.
func (l *LotLocker) Lock(lot string) func() {
	l.mu.Lock()
	m, ok := l.locks[lot]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lot] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
