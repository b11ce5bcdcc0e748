package download

import (
	"context"
	"log/slog"
	"time"

	"github.com/vidgrab/vidgrab/internal/model"
	"github.com/vidgrab/vidgrab/internal/platform"
)

// Config holds the service configuration.
type Config struct {
	// DownloadDir is where fetched files are written.
	DownloadDir string

	// SessionTTL bounds how long probed metadata stays cached for a user.
	// Zero disables expiry.
	SessionTTL time.Duration

	// Logger for engine events.
	Logger *slog.Logger
}

// Service is the download orchestration engine. It composes the catalog
// prober, the encoding selector, the per-user session cache and the per-user
// concurrency guard, and owns the lifecycle of downloaded temp files up to
// the point where the caller takes over.
type Service struct {
	prober   Prober
	fetcher  Fetcher
	recorder Recorder
	sessions *sessionStore
	guard    *guard
	cfg      Config
	logger   *slog.Logger
	observer Observer
}

// Observer receives engine outcome notifications, e.g. for metrics. All
// methods may be called concurrently.
type Observer interface {
	ProbeFinished(outcome string)
	DownloadFinished(outcome string, elapsed time.Duration)
	BusyRejected()
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the download statistics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithObserver sets the outcome observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates the engine with its collaborators injected. Construct
// one per process; tests may instantiate as many isolated instances as
// needed since no state is process-global.
func NewService(prober Prober, fetcher Fetcher, cfg Config, opts ...Option) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}

	s := &Service{
		prober:   prober,
		fetcher:  fetcher,
		sessions: newSessionStore(cfg.SessionTTL),
		guard:    newGuard(),
		cfg:      cfg,
		logger:   cfg.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches background maintenance (session expiry sweeps).
func (s *Service) Start() {
	s.sessions.StartJanitor()
}

// Stop halts background maintenance.
func (s *Service) Stop() {
	s.sessions.StopJanitor()
}

// GetInfo probes the URL's catalog and caches it for the user, returning the
// summary to present. Returns ErrBusy when the user already has an operation
// in flight, or a MetadataFetchError when the probe fails.
func (s *Service) GetInfo(ctx context.Context, userID int64, url string) (model.VideoSummary, error) {
	if !s.guard.TryAcquire(userID) {
		s.busyRejected()
		return model.VideoSummary{}, ErrBusy
	}
	defer s.guard.Release(userID)

	s.logger.Info("probing video", "user_id", userID, "url", url)

	info, err := s.prober.Probe(ctx, url)
	if err != nil {
		s.probeFinished("error")
		s.logger.Warn("probe failed", "user_id", userID, "url", url, "error", err)
		return model.VideoSummary{}, newMetadataFetchError(err)
	}

	s.sessions.Put(userID, info)
	s.probeFinished("ok")

	return model.VideoSummary{
		Title:           info.Title,
		DurationSeconds: info.DurationSeconds,
		Thumbnail:       info.Thumbnail,
		Qualities:       model.DisplayQualities(info.Encodings),
	}, nil
}

// DownloadResolution downloads the previously probed video at the quality
// closest to targetHeight. A zero targetHeight requests best-effort automatic
// selection by the fetch service. On success the caller owns the returned
// file and must call CleanupFile (and usually ClearSession) when done.
func (s *Service) DownloadResolution(ctx context.Context, userID int64, targetHeight int) (model.DownloadResult, error) {
	if !s.guard.TryAcquire(userID) {
		s.busyRejected()
		return model.DownloadResult{}, ErrBusy
	}
	defer s.guard.Release(userID)

	info, ok := s.sessions.Get(userID)
	if !ok {
		return model.DownloadResult{}, ErrStaleSession
	}

	selector := selectorBest
	if targetHeight > 0 {
		enc, err := selectEncoding(info.Encodings, targetHeight)
		if err != nil {
			return model.DownloadResult{}, err
		}
		selector = formatSelector(enc)
		s.logger.Info("selected encoding",
			"user_id", userID,
			"format_id", enc.FormatID,
			"height", enc.Height,
			"has_audio", enc.HasAudio,
			"target", targetHeight)
	}

	destPath := platform.TempFilePath(s.cfg.DownloadDir, userID)
	started := time.Now()

	if err := s.fetcher.Fetch(ctx, info.URL, selector, destPath); err != nil {
		// Drop whatever was partially written before reporting failure.
		if rmErr := platform.Remove(destPath); rmErr != nil {
			s.logger.Warn("removing partial download", "path", destPath, "error", rmErr)
		}
		s.downloadFinished("error", time.Since(started))
		s.logger.Warn("download failed", "user_id", userID, "url", info.URL, "error", err)
		return model.DownloadResult{}, newDownloadError(err)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordDownload(userID, info.URL); err != nil {
			s.logger.Warn("recording download stat", "user_id", userID, "error", err)
		}
	}

	s.downloadFinished("ok", time.Since(started))
	s.logger.Info("download complete", "user_id", userID, "path", destPath)
	return model.DownloadResult{FilePath: destPath}, nil
}

// CleanupFile removes a downloaded file. Safe to call on a missing path.
func (s *Service) CleanupFile(path string) {
	if err := platform.Remove(path); err != nil {
		s.logger.Warn("removing downloaded file", "path", path, "error", err)
	}
}

// ClearSession drops the cached metadata for a user. Idempotent.
func (s *Service) ClearSession(userID int64) {
	s.sessions.Clear(userID)
}

func (s *Service) probeFinished(outcome string) {
	if s.observer != nil {
		s.observer.ProbeFinished(outcome)
	}
}

func (s *Service) downloadFinished(outcome string, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.DownloadFinished(outcome, elapsed)
	}
}

func (s *Service) busyRejected() {
	if s.observer != nil {
		s.observer.BusyRejected()
	}
}
