// Package store persists known users and download statistics in bbolt.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

// Bucket names.
var (
	bucketUsers     = []byte("users")
	bucketDownloads = []byte("downloads")
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// User is a person the service has seen at least once.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// DownloadStat records one completed download.
type DownloadStat struct {
	UserID       int64     `json:"user_id"`
	URL          string    `json:"url"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Store is the bbolt-backed persistence layer.
type Store struct {
	db     *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithNow sets the time function for testing.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store with options applied. Call Open before use.
func New(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the database at the given path and creates buckets.
func (s *Store) Open(path string) error {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketDownloads} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	s.logger.Debug("opened store", "path", path)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertUser inserts the user or refreshes its mutable fields, preserving
// CreatedAt and bumping LastSeen. Called on every request a user makes.
func (s *Store) UpsertUser(user User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		key := userKey(user.ID)

		current := User{ID: user.ID, CreatedAt: s.now()}
		if raw := bucket.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("decoding user %d: %w", user.ID, err)
			}
		}

		current.Username = user.Username
		current.FirstName = user.FirstName
		current.LastName = user.LastName
		current.LastSeen = s.now()

		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encoding user %d: %w", user.ID, err)
		}
		return bucket.Put(key, data)
	})
}

// GetUser returns a user by id, or ErrNotFound.
func (s *Store) GetUser(id int64) (User, error) {
	var user User
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketUsers).Get(userKey(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &user)
	})
	return user, err
}

// ListUsers returns every known user in id order.
func (s *Store) ListUsers() ([]User, error) {
	var users []User
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(_, raw []byte) error {
			var user User
			if err := json.Unmarshal(raw, &user); err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	return users, err
}

// UserCount returns the number of known users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketUsers).Stats().KeyN
		return nil
	})
	return count, err
}

// RecordDownload appends a download stat. Satisfies the engine's Recorder.
func (s *Store) RecordDownload(userID int64, url string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDownloads)

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}

		stat := DownloadStat{
			UserID:       userID,
			URL:          url,
			DownloadedAt: s.now(),
		}
		data, err := json.Marshal(stat)
		if err != nil {
			return fmt.Errorf("encoding download stat: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
}

// DownloadCount returns the number of recorded downloads.
func (s *Store) DownloadCount() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketDownloads).Stats().KeyN
		return nil
	})
	return count, err
}

func userKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
