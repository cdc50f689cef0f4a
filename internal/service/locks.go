package service

import "sync"

// terminalLocks hands out one mutex per terminal id.
type terminalLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *terminalLocks) lock(terminalID string) (unlock func()) {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	l, ok := t.locks[terminalID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[terminalID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
