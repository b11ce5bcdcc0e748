package platform

import (
	"encoding/json"
	"testing"
)

func TestCatalogFromFormats_DedupeAndOrder(t *testing.T) {
	formats := []ytdlpFormat{
		{FormatID: "247", Height: 720, VCodec: "vp9", ACodec: "none"},
		{FormatID: "135", Height: 480, VCodec: "avc1", ACodec: "none"},
		{FormatID: "302", Height: 720, VCodec: "vp9", ACodec: "opus"},
		{FormatID: "134", Height: 360, VCodec: "avc1", ACodec: "mp4a"},
		{FormatID: "audio", Height: 0, VCodec: "none", ACodec: "opus"},
	}

	encodings := catalogFromFormats(formats)

	heights := make([]int, 0, len(encodings))
	for _, enc := range encodings {
		heights = append(heights, enc.Height)
	}

	expected := []int{360, 480, 720}
	if len(heights) != len(expected) {
		t.Fatalf("expected %d encodings, got %d (%v)", len(expected), len(heights), heights)
	}
	for i, h := range expected {
		if heights[i] != h {
			t.Errorf("encoding %d: expected height %d, got %d", i, h, heights[i])
		}
	}

	// The 720p slot should hold the variant that carries audio.
	last := encodings[len(encodings)-1]
	if !last.HasAudio || last.FormatID != "302" {
		t.Errorf("expected 720p entry to be format 302 with audio, got %+v", last)
	}
}

func TestCatalogFromFormats_Empty(t *testing.T) {
	if got := catalogFromFormats(nil); len(got) != 0 {
		t.Errorf("expected empty catalog, got %v", got)
	}

	audioOnly := []ytdlpFormat{
		{FormatID: "140", Height: 0, VCodec: "none", ACodec: "mp4a"},
	}
	if got := catalogFromFormats(audioOnly); len(got) != 0 {
		t.Errorf("expected audio-only formats to be dropped, got %v", got)
	}
}

func TestProbeOutputParsing(t *testing.T) {
	raw := `{
		"title": "Test Clip",
		"thumbnail": "https://example.com/t.jpg",
		"duration": 65.0,
		"formats": [
			{"format_id": "135", "height": 480, "vcodec": "avc1", "acodec": "mp4a"},
			{"format_id": "247", "height": 720, "vcodec": "vp9", "acodec": "none"}
		]
	}`

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if info.Title != "Test Clip" {
		t.Errorf("expected title 'Test Clip', got %q", info.Title)
	}
	if int(info.Duration) != 65 {
		t.Errorf("expected duration 65, got %v", info.Duration)
	}
	if len(info.Formats) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(info.Formats))
	}
	if info.Formats[1].ACodec != "none" {
		t.Errorf("expected second format acodec 'none', got %q", info.Formats[1].ACodec)
	}
}
