package model

import (
	"fmt"
	"strconv"
)

// Encoding is one concrete stream variant offered by the source for a URL.
// FormatID is the opaque identifier the fetch service uses to request exactly
// this variant. Encodings are produced by the catalog probe and never mutated.
type Encoding struct {
	FormatID string
	Height   int
	HasVideo bool
	HasAudio bool
}

// MediaInfo is the probed metadata for a single URL: display fields plus the
// catalog of encodings, deduplicated by height and sorted ascending.
type MediaInfo struct {
	URL             string
	Title           string
	Thumbnail       string
	DurationSeconds int
	Encodings       []Encoding
}

// VideoSummary is what the caller gets back from an info request.
type VideoSummary struct {
	Title           string
	DurationSeconds int
	Thumbnail       string
	Qualities       []string
}

// DownloadResult holds the outcome of a completed download. The caller owns
// the file at FilePath and is responsible for removing it when done.
type DownloadResult struct {
	FilePath string
}

// Preferred quality tiers shown to users when the catalog reaches them, and
// the wider fallback list used when it does not.
var (
	preferredTiers = []int{480, 720}
	fallbackTiers  = []int{360, 480, 720}
)

// DisplayQualities derives the quality options to present for a catalog.
// A preferred tier is offered when the catalog has any encoding at or above
// it; if no preferred tier qualifies the fallback list is returned so the
// caller always has something to present.
func DisplayQualities(encodings []Encoding) []string {
	maxHeight := 0
	for _, enc := range encodings {
		if enc.Height > maxHeight {
			maxHeight = enc.Height
		}
	}

	var out []string
	for _, tier := range preferredTiers {
		if tier <= maxHeight {
			out = append(out, strconv.Itoa(tier))
		}
	}
	if len(out) == 0 {
		for _, tier := range fallbackTiers {
			out = append(out, strconv.Itoa(tier))
		}
	}
	return out
}

// FormatDuration renders a duration in seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
