// Package broadcast fans a message out to every known user through an
// injected sender. Delivery failures are tallied, not fatal.
package broadcast

import (
	"context"
	"log/slog"

	"github.com/vidgrab/vidgrab/internal/store"
)

// Sender delivers a message to one user. Implemented by the frontend layer.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// UserLister supplies the recipients. Satisfied by *store.Store.
type UserLister interface {
	ListUsers() ([]store.User, error)
}

// Service performs broadcasts.
type Service struct {
	users  UserLister
	sender Sender
	logger *slog.Logger
}

// NewService creates a broadcast service.
func NewService(users UserLister, sender Sender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sender: sender, logger: logger}
}

// SendToAll delivers text to every known user, continuing past individual
// failures. It returns how many sends succeeded and how many failed.
func (s *Service) SendToAll(ctx context.Context, text string) (sent, failed int, err error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return 0, 0, err
	}

	for _, user := range users {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		if sendErr := s.sender.Send(ctx, user.ID, text); sendErr != nil {
			s.logger.Warn("broadcast delivery failed", "user_id", user.ID, "error", sendErr)
			failed++
			continue
		}
		sent++
	}

	s.logger.Info("broadcast finished", "total", len(users), "sent", sent, "failed", failed)
	return sent, failed, nil
}
