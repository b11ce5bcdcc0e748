package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/vidgrab/vidgrab/internal/store"
)

// requestLogger logs each request with method, path, status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// trackUser upserts the requesting user so statistics and broadcasts know
// about everyone who ever talked to the service. The body is restored for
// the next handler; tracking failures never block the request.
func (s *Server) trackUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tracker == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "reading body failed", "")
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		var ident struct {
			UserID    int64  `json:"user_id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := json.Unmarshal(body, &ident); err == nil && ident.UserID != 0 {
			user := store.User{
				ID:        ident.UserID,
				Username:  ident.Username,
				FirstName: ident.FirstName,
				LastName:  ident.LastName,
			}
			if err := s.tracker.UpsertUser(user); err != nil {
				s.logger.Warn("tracking user", "user_id", ident.UserID, "error", err)
			}
		}

		next.ServeHTTP(w, r)
	})
}
