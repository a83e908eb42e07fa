package workout

import "sync"

// liftLocks serializes state changes per lift. Different lifts progress independently.
type liftLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLiftLocks() *liftLocks {
	return &liftLocks{
		mu:    sync.Mutex{},
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the lock of lift and returns the function releasing it.
func (l *liftLocks) lock(lift string) func() {
	l.mu.Lock()
	m, ok := l.locks[lift]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lift] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
