package download

import (
	"errors"
	"strings"
)

// Sentinel errors surfaced to the caller layer.
var (
	// ErrBusy means the user already has an operation in flight. Retry once
	// the current one finishes.
	ErrBusy = errors.New("another operation is already in progress for this user")

	// ErrNoSuitableEncoding means the catalog offers no encoding with a
	// video track.
	ErrNoSuitableEncoding = errors.New("no suitable video encoding available")

	// ErrStaleSession means a download was requested without a prior
	// successful info fetch. The user must resubmit the link.
	ErrStaleSession = errors.New("no cached video info for this user, resubmit the link")
)

// Caps on diagnostic text passed back to callers.
const (
	maxMetadataErrLen = 100
	maxDownloadErrLen = 150
)

// MetadataFetchError wraps a failure to retrieve the encoding catalog.
// Forbidden marks access-denied failures so the caller can give distinct
// guidance (try another link, update the extractor).
type MetadataFetchError struct {
	Forbidden bool
	Message   string
}

func (e *MetadataFetchError) Error() string {
	if e.Forbidden {
		return "access to the video was denied: " + e.Message
	}
	return "failed to fetch video info: " + e.Message
}

// DownloadError wraps a failure of the external fetch after a valid selection.
type DownloadError struct {
	Message string
}

func (e *DownloadError) Error() string {
	return "failed to download video: " + e.Message
}

// newMetadataFetchError builds a MetadataFetchError from an underlying error,
// classifying forbidden-class failures and bounding the diagnostic text.
func newMetadataFetchError(err error) *MetadataFetchError {
	msg := err.Error()
	forbidden := containsAny(msg, "403", "Forbidden")
	return &MetadataFetchError{
		Forbidden: forbidden,
		Message:   truncate(msg, maxMetadataErrLen),
	}
}

// newDownloadError builds a DownloadError with bounded diagnostic text.
func newDownloadError(err error) *DownloadError {
	return &DownloadError{Message: truncate(err.Error(), maxDownloadErrLen)}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
