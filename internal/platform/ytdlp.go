package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"time"

	"github.com/vidgrab/vidgrab/internal/model"
)

// Defaults for the yt-dlp adapter.
const (
	DefaultBinary       = "yt-dlp"
	DefaultProbeTimeout = 30 * time.Second
)

// YTDLP probes and fetches media through the yt-dlp binary. It satisfies the
// download engine's Prober and Fetcher interfaces.
type YTDLP struct {
	binary       string
	probeTimeout time.Duration
}

// YTDLPOption configures a YTDLP adapter.
type YTDLPOption func(*YTDLP)

// WithBinary sets the yt-dlp executable path.
func WithBinary(path string) YTDLPOption {
	return func(y *YTDLP) {
		if path != "" {
			y.binary = path
		}
	}
}

// WithProbeTimeout sets the timeout for metadata probes.
func WithProbeTimeout(timeout time.Duration) YTDLPOption {
	return func(y *YTDLP) {
		if timeout > 0 {
			y.probeTimeout = timeout
		}
	}
}

// NewYTDLP creates a yt-dlp adapter with options applied.
func NewYTDLP(opts ...YTDLPOption) *YTDLP {
	y := &YTDLP{
		binary:       DefaultBinary,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

type ytdlpInfo struct {
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Duration  float64       `json:"duration"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Height   int    `json:"height"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
}

// Probe fetches metadata for a URL without downloading. The returned catalog
// is deduplicated by height and sorted ascending; per height, a variant that
// already carries audio wins over one that does not.
func (y *YTDLP) Probe(ctx context.Context, url string) (model.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.binary, "-J", "--no-warnings", url)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return model.MediaInfo{}, fmt.Errorf("probing %s: %w: %s", url, err, stderr.String())
	}

	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return model.MediaInfo{}, fmt.Errorf("parsing probe output for %s: %w", url, err)
	}

	return model.MediaInfo{
		URL:             url,
		Title:           info.Title,
		Thumbnail:       info.Thumbnail,
		DurationSeconds: int(info.Duration),
		Encodings:       catalogFromFormats(info.Formats),
	}, nil
}

// catalogFromFormats converts raw yt-dlp formats into the encoding catalog.
func catalogFromFormats(formats []ytdlpFormat) []model.Encoding {
	byHeight := make(map[int]model.Encoding)
	for _, f := range formats {
		if f.Height == 0 {
			continue
		}
		enc := model.Encoding{
			FormatID: f.FormatID,
			Height:   f.Height,
			HasVideo: f.VCodec != "" && f.VCodec != "none",
			HasAudio: f.ACodec != "" && f.ACodec != "none",
		}
		existing, seen := byHeight[f.Height]
		if !seen {
			byHeight[f.Height] = enc
			continue
		}
		// Prefer a variant with both tracks at the same height.
		if enc.HasVideo && enc.HasAudio && !(existing.HasVideo && existing.HasAudio) {
			byHeight[f.Height] = enc
		}
	}

	encodings := make([]model.Encoding, 0, len(byHeight))
	for _, enc := range byHeight {
		encodings = append(encodings, enc)
	}
	sort.Slice(encodings, func(i, j int) bool {
		return encodings[i].Height < encodings[j].Height
	})
	return encodings
}

// Fetch downloads the media selected by formatSelector into destPath.
// The selector is either the generic "best" token or a concrete
// "<formatID>+bestaudio/<formatID>/best" chain built by the engine.
func (y *YTDLP) Fetch(ctx context.Context, url, formatSelector, destPath string) error {
	cmd := exec.CommandContext(ctx, y.binary,
		"-f", formatSelector,
		"--merge-output-format", "mp4",
		"--no-warnings",
		"--no-playlist",
		"-o", destPath,
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("fetching %s: %w: %s", url, err, stderr.String())
	}
	return nil
}
