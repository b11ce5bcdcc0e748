package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidgrab/vidgrab/internal/download"
	"github.com/vidgrab/vidgrab/internal/model"
)

type infoRequest struct {
	UserID    int64  `json:"user_id"`
	URL       string `json:"url"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type infoResponse struct {
	Title           string   `json:"title"`
	DurationSeconds int      `json:"duration_seconds"`
	Duration        string   `json:"duration"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Qualities       []string `json:"qualities"`
}

type downloadRequest struct {
	UserID  int64  `json:"user_id"`
	Quality string `json:"quality"`
}

type downloadResponse struct {
	FilePath string `json:"file_path"`
}

type cleanupRequest struct {
	FilePath string `json:"file_path"`
}

type statsResponse struct {
	Users     int `json:"users"`
	Downloads int `json:"downloads"`
}

type broadcastRequest struct {
	Text string `json:"text"`
}

type broadcastResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", "")
		return
	}
	if req.UserID == 0 || req.URL == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "user_id and url are required", "")
		return
	}

	summary, err := s.engine.GetInfo(r.Context(), req.UserID, req.URL)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, infoResponse{
		Title:           summary.Title,
		DurationSeconds: summary.DurationSeconds,
		Duration:        model.FormatDuration(summary.DurationSeconds),
		Thumbnail:       summary.Thumbnail,
		Qualities:       summary.Qualities,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", "")
		return
	}
	if req.UserID == 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "user_id is required", "")
		return
	}

	target, err := parseQuality(req.Quality)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "quality must be a height in pixels or \"best\"", "")
		return
	}

	result, err := s.engine.DownloadResolution(r.Context(), req.UserID, target)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, downloadResponse{FilePath: result.FilePath})
}

func (s *Server) handleCleanupFile(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "file_path is required", "")
		return
	}

	s.engine.CleanupFile(req.FilePath)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid user id", "")
		return
	}

	s.engine.ClearSession(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		respondError(w, http.StatusNotFound, "not_found", "statistics are not enabled", "")
		return
	}

	users, err := s.stats.UserCount()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "reading statistics failed", "")
		return
	}
	downloads, err := s.stats.DownloadCount()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "reading statistics failed", "")
		return
	}

	respondJSON(w, http.StatusOK, statsResponse{Users: users, Downloads: downloads})
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	if s.broadcaster == nil {
		respondError(w, http.StatusNotFound, "not_found", "broadcasting is not enabled", "")
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "text is required", "")
		return
	}

	sent, failed, err := s.broadcaster.SendToAll(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("broadcast", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "broadcast failed", "")
		return
	}

	respondJSON(w, http.StatusOK, broadcastResponse{Sent: sent, Failed: failed})
}

// respondEngineError maps the engine's error taxonomy onto HTTP responses.
// The frontend turns these codes into user-facing text.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	var metaErr *download.MetadataFetchError
	var dlErr *download.DownloadError

	switch {
	case errors.Is(err, download.ErrBusy):
		respondError(w, http.StatusConflict, "busy",
			err.Error(), "wait for the current operation to finish")
	case errors.Is(err, download.ErrStaleSession):
		respondError(w, http.StatusGone, "stale_session",
			err.Error(), "resend the link")
	case errors.Is(err, download.ErrNoSuitableEncoding):
		respondError(w, http.StatusUnprocessableEntity, "no_suitable_encoding",
			err.Error(), "")
	case errors.As(err, &metaErr):
		hint := ""
		if metaErr.Forbidden {
			hint = "try another link or update the extractor"
		}
		respondError(w, http.StatusBadGateway, "metadata_fetch_failed", metaErr.Message, hint)
	case errors.As(err, &dlErr):
		respondError(w, http.StatusBadGateway, "download_failed", dlErr.Message, "")
	default:
		s.logger.Error("unexpected engine error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error", "")
	}
}

// parseQuality turns the caller's quality token into a target height.
// Empty or "best" means automatic selection.
func parseQuality(quality string) (int, error) {
	if quality == "" || quality == "best" {
		return 0, nil
	}
	height, err := strconv.Atoi(quality)
	if err != nil || height <= 0 {
		return 0, errors.New("invalid quality token")
	}
	return height, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message, hint string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code, Hint: hint})
}
