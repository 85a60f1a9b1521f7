package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Normalize validates and canonicalizes raw utterances from any source:
// empty rows are dropped, the rest are sorted by start time and
// re-indexed. A transcript that violates the timing invariants is
// rejected as malformed rather than silently repaired.
func Normalize(episodeID string, raw []entities.Utterance) ([]entities.Utterance, error) {
	utterances := make([]entities.Utterance, 0, len(raw))
	for _, u := range raw {
		if strings.TrimSpace(u.Text) == "" {
			continue
		}
		utterances = append(utterances, u)
	}

	if len(utterances) == 0 {
		return nil, apperrors.ErrMalformedTranscript(episodeID, "transcript contains no usable utterances")
	}

	for i := range utterances {
		u := &utterances[i]
		if math.IsNaN(u.StartTime) || math.IsInf(u.StartTime, 0) ||
			math.IsNaN(u.EndTime) || math.IsInf(u.EndTime, 0) {
			return nil, apperrors.ErrMalformedTranscript(episodeID,
				fmt.Sprintf("non-finite timestamp at utterance %d", i))
		}
		if u.StartTime < 0 {
			return nil, apperrors.ErrMalformedTranscript(episodeID,
				fmt.Sprintf("negative start time %.3f at utterance %d", u.StartTime, i))
		}
		if u.EndTime < u.StartTime {
			return nil, apperrors.ErrMalformedTranscript(episodeID,
				fmt.Sprintf("end before start at utterance %d (%.3f < %.3f)", i, u.EndTime, u.StartTime))
		}
		if u.Confidence < 0 || u.Confidence > 1 {
			u.Confidence = clamp01(u.Confidence)
		}
	}

	sort.SliceStable(utterances, func(i, j int) bool {
		return utterances[i].StartTime < utterances[j].StartTime
	})

	for i := range utterances {
		utterances[i].EpisodeID = episodeID
		utterances[i].UtteranceIndex = i
	}
	return utterances, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FullText joins utterances into a single timestamped transcript block
// for prompt building, one line per speaker turn.
func FullText(utterances []entities.Utterance) string {
	var sb strings.Builder
	for _, u := range utterances {
		minutes := int(u.StartTime) / 60
		seconds := int(u.StartTime) % 60
		sb.WriteString(fmt.Sprintf("[%02d:%02d %s]: %s\n", minutes, seconds, u.Speaker, u.Text))
	}
	return sb.String()
}
