package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := New(opts...)
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, s.Open(path))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UpsertUser(t *testing.T) {
	current := time.Unix(1700000000, 0).UTC()
	s := newTestStore(t, WithNow(func() time.Time { return current }))

	t.Run("insert then fetch", func(t *testing.T) {
		err := s.UpsertUser(User{ID: 1, Username: "alice", FirstName: "Alice"})
		require.NoError(t, err)

		user, err := s.GetUser(1)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, current, user.CreatedAt)
		assert.Equal(t, current, user.LastSeen)
	})

	t.Run("upsert preserves created_at and bumps last_seen", func(t *testing.T) {
		current = current.Add(time.Hour)

		err := s.UpsertUser(User{ID: 1, Username: "alice2"})
		require.NoError(t, err)

		user, err := s.GetUser(1)
		require.NoError(t, err)
		assert.Equal(t, "alice2", user.Username)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), user.CreatedAt)
		assert.Equal(t, current, user.LastSeen)
	})

	t.Run("missing user returns ErrNotFound", func(t *testing.T) {
		_, err := s.GetUser(999)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ListAndCountUsers(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.UpsertUser(User{ID: 3, Username: "c"}))
	require.NoError(t, s.UpsertUser(User{ID: 1, Username: "a"}))
	require.NoError(t, s.UpsertUser(User{ID: 2, Username: "b"}))

	// Upsert of an existing id does not add a row.
	require.NoError(t, s.UpsertUser(User{ID: 1, Username: "a"}))

	count, err = s.UserCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	users, err := s.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, int64(2), users[1].ID)
	assert.Equal(t, int64(3), users[2].ID)
}

func TestStore_DownloadStats(t *testing.T) {
	current := time.Unix(1700000000, 0).UTC()
	s := newTestStore(t, WithNow(func() time.Time { return current }))

	count, err := s.DownloadCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.RecordDownload(1, "https://example.com/a"))
	require.NoError(t, s.RecordDownload(1, "https://example.com/b"))
	require.NoError(t, s.RecordDownload(2, "https://example.com/a"))

	count, err = s.DownloadCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
