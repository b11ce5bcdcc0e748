package download

import (
	"fmt"
	"sort"

	"github.com/vidgrab/vidgrab/internal/model"
)

// Format selector token for best-effort automatic selection.
const selectorBest = "best"

// selectEncoding picks the encoding closest to targetHeight among those with
// a video track. Ties on distance prefer an encoding that already carries
// audio, avoiding a separate merge step downstream. Pure function.
func selectEncoding(encodings []model.Encoding, targetHeight int) (model.Encoding, error) {
	type candidate struct {
		enc  model.Encoding
		diff int
	}

	var candidates []candidate
	for _, enc := range encodings {
		if !enc.HasVideo {
			continue
		}
		diff := enc.Height - targetHeight
		if diff < 0 {
			diff = -diff
		}
		candidates = append(candidates, candidate{enc: enc, diff: diff})
	}

	if len(candidates) == 0 {
		return model.Encoding{}, ErrNoSuitableEncoding
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].diff != candidates[j].diff {
			return candidates[i].diff < candidates[j].diff
		}
		return candidates[i].enc.HasAudio && !candidates[j].enc.HasAudio
	})

	return candidates[0].enc, nil
}

// formatSelector builds the fetch-service selector for an encoding: the exact
// format plus a best-audio fallback so a video-only stream gets audio merged.
func formatSelector(enc model.Encoding) string {
	return fmt.Sprintf("%s+bestaudio/%s/best", enc.FormatID, enc.FormatID)
}
