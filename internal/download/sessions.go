package download

import (
	"sync"
	"time"

	"github.com/vidgrab/vidgrab/internal/model"
)

// DefaultSessionTTL bounds how long a probed catalog stays available for a
// user who never picks a quality. Zero disables expiry entirely, matching
// the historical unbounded behavior.
const DefaultSessionTTL = 30 * time.Minute

// How often the janitor sweeps expired sessions.
const sessionSweepInterval = time.Minute

type sessionEntry struct {
	info     model.MediaInfo
	storedAt time.Time
}

// sessionStore holds the most recently probed metadata per user between the
// info and download phases. Put overwrites unconditionally (last fetch wins),
// Clear is idempotent.
type sessionStore struct {
	mu      sync.Mutex
	entries map[int64]sessionEntry
	ttl     time.Duration
	now     func() time.Time

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		entries: make(map[int64]sessionEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *sessionStore) Put(userID int64, info model.MediaInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = sessionEntry{info: info, storedAt: s.now()}
}

// Get returns the cached metadata for a user, reporting absence rather than
// an error. An entry past its TTL counts as absent and is dropped.
func (s *sessionStore) Get(userID int64) (model.MediaInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return model.MediaInfo{}, false
	}
	if s.expired(entry) {
		delete(s.entries, userID)
		return model.MediaInfo{}, false
	}
	return entry.info, true
}

func (s *sessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

func (s *sessionStore) expired(entry sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.storedAt) > s.ttl
}

// StartJanitor begins periodic sweeps of expired sessions. It is a no-op
// when TTL is disabled or a janitor is already running.
func (s *sessionStore) StartJanitor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl <= 0 || s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)
}

// StopJanitor halts the sweep goroutine and waits for it to exit. Safe to
// call when no janitor was started.
func (s *sessionStore) StopJanitor() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *sessionStore) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-stopCh:
			return
		}
	}
}

func (s *sessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, userID)
		}
	}
}
