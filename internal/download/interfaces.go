package download

import (
	"context"

	"github.com/vidgrab/vidgrab/internal/model"
)

// Prober obtains the encoding catalog and display metadata for a URL.
// Implementations must return the catalog deduplicated by height, ascending.
type Prober interface {
	Probe(ctx context.Context, url string) (model.MediaInfo, error)
}

// Fetcher downloads the media selected by formatSelector into destPath.
// The selector is the generic "best" token or a concrete format chain.
type Fetcher interface {
	Fetch(ctx context.Context, url, formatSelector, destPath string) error
}

// Recorder is notified of each completed download for statistics. A nil
// Recorder on the service disables recording.
type Recorder interface {
	RecordDownload(userID int64, url string) error
}
