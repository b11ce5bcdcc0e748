package download

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidgrab/vidgrab/internal/model"
)

func TestSessionStore_PutGetClear(t *testing.T) {
	s := newSessionStore(0)

	_, ok := s.Get(1)
	assert.False(t, ok, "empty store reports absence, not an error")

	first := model.MediaInfo{URL: "https://example.com/a", Title: "A"}
	s.Put(1, first)

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)

	// Last fetch wins.
	s.Put(1, model.MediaInfo{URL: "https://example.com/b", Title: "B"})
	got, ok = s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "B", got.Title)

	s.Clear(1)
	_, ok = s.Get(1)
	assert.False(t, ok)

	// Clearing an absent entry is a no-op.
	s.Clear(1)
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	s := newSessionStore(10 * time.Minute)

	current := time.Unix(1700000000, 0)
	s.now = func() time.Time { return current }

	s.Put(1, model.MediaInfo{Title: "A"})

	current = current.Add(9 * time.Minute)
	_, ok := s.Get(1)
	assert.True(t, ok, "entry within TTL is served")

	current = current.Add(2 * time.Minute)
	_, ok = s.Get(1)
	assert.False(t, ok, "entry past TTL counts as absent")
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	s := newSessionStore(0)

	current := time.Unix(1700000000, 0)
	s.now = func() time.Time { return current }

	s.Put(1, model.MediaInfo{Title: "A"})
	current = current.Add(1000 * time.Hour)

	_, ok := s.Get(1)
	assert.True(t, ok)
}

func TestSessionStore_Sweep(t *testing.T) {
	s := newSessionStore(time.Minute)

	current := time.Unix(1700000000, 0)
	s.now = func() time.Time { return current }

	s.Put(1, model.MediaInfo{Title: "old"})
	current = current.Add(2 * time.Minute)
	s.Put(2, model.MediaInfo{Title: "fresh"})

	s.sweep()

	s.mu.Lock()
	_, hasOld := s.entries[1]
	_, hasFresh := s.entries[2]
	s.mu.Unlock()

	assert.False(t, hasOld)
	assert.True(t, hasFresh)
}

func TestSessionStore_JanitorLifecycle(t *testing.T) {
	s := newSessionStore(time.Minute)
	s.StartJanitor()
	s.StopJanitor()

	// Stopping twice, or without a start, must not hang.
	s.StopJanitor()

	disabled := newSessionStore(0)
	disabled.StartJanitor()
	disabled.StopJanitor()
}
