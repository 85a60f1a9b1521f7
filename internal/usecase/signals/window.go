// Package signals derives clip-worthiness hints from a transcript.
// Every analyzer is a pure function of its input, so repeated runs over
// the same transcript yield identical signals.
package signals

import (
	"strings"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

const (
	// windowSeconds is the base analysis window
	windowSeconds = 45.0
	// windowStride gives 50% overlap between consecutive windows
	windowStride = windowSeconds / 2
)

// window is a contiguous slice of utterances under analysis
type window struct {
	start      float64
	end        float64
	utterances []entities.Utterance
}

func (w *window) text() string {
	parts := make([]string, 0, len(w.utterances))
	for _, u := range w.utterances {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}

func (w *window) wordCount() int {
	n := 0
	for _, u := range w.utterances {
		n += len(strings.Fields(u.Text))
	}
	return n
}

// slide cuts the transcript into overlapping windows of the given size.
// A window owns every utterance whose start falls inside it.
func slide(utterances []entities.Utterance, size, stride float64) []window {
	if len(utterances) == 0 {
		return nil
	}
	total := utterances[len(utterances)-1].EndTime

	var windows []window
	for start := 0.0; start < total; start += stride {
		end := start + size
		var member []entities.Utterance
		for _, u := range utterances {
			if u.StartTime >= start && u.StartTime < end {
				member = append(member, u)
			}
		}
		if len(member) == 0 {
			continue
		}
		windows = append(windows, window{start: start, end: end, utterances: member})
		if end >= total {
			break
		}
	}
	return windows
}
