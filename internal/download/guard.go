package download

import "sync"

// guard is the per-user mutual exclusion token. At most one operation may
// hold a user's slot at any instant; a second attempt is rejected
// immediately rather than queued.
type guard struct {
	mu     sync.Mutex
	active map[int64]bool
}

func newGuard() *guard {
	return &guard{active: make(map[int64]bool)}
}

// TryAcquire atomically checks-and-sets the user's slot. It returns false
// without blocking when the slot is already held.
func (g *guard) TryAcquire(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[userID] {
		return false
	}
	g.active[userID] = true
	return true
}

// Release frees the user's slot unconditionally. Call exactly once per
// successful TryAcquire, on every exit path of the guarded operation.
func (g *guard) Release(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, userID)
}
