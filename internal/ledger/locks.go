package ledger

import "sync"

// accountLocks hands out one mutex per account number so operations on
// a single account serialize while unrelated accounts proceed freely.
type accountLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{m: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	return mu
}

// lock acquires the mutex for one account and returns its unlock func.
func (l *accountLocks) lock(key string) func() {
	mu := l.get(key)
	mu.Lock()
	return mu.Unlock
}

// lockPair acquires both accounts' mutexes in ascending key order, so
// two opposite-direction transfers cannot deadlock each other.
func (l *accountLocks) lockPair(a, b string) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	muA := l.get(first)
	muB := l.get(second)
	muA.Lock()
	muB.Lock()
	return func() {
		muB.Unlock()
		muA.Unlock()
	}
}
