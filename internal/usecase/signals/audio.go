package signals

import (
	"fmt"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

const (
	// Speech rate band that keeps short clips watchable
	optimalWPSLow  = 2.0
	optimalWPSHigh = 4.0

	// dramaticPauseSeconds is the silence length that reads as intentional
	dramaticPauseSeconds = 1.5
)

// audioAnalyzer estimates delivery dynamics from word timings alone, so
// it needs no audio decode and stays deterministic.
type audioAnalyzer struct{}

func (audioAnalyzer) analyze(episodeID string, utterances []entities.Utterance) []entities.Signal {
	var out []entities.Signal

	windows := slide(utterances, windowSeconds, windowStride)
	var prevWPS float64
	for i, w := range windows {
		duration := w.end - w.start
		if duration <= 0 {
			continue
		}
		wps := float64(w.wordCount()) / duration

		if score := pacingScore(wps); score >= 5 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryAudio, entities.SignalKindPacing, w, score,
				fmt.Sprintf("%.1f wps", wps)))
		}

		// Energy: fast delivery well above the optimal band reads as a peak
		if wps > optimalWPSHigh {
			score := capScore(5 + (wps-optimalWPSHigh)*2)
			out = append(out, newSignal(episodeID, entities.SignalCategoryAudio, entities.SignalKindEnergyPeak, w, score, ""))
		}

		// Emotional arc: a marked tempo change between adjacent windows
		if i > 0 && prevWPS > 0 {
			delta := wps - prevWPS
			if delta < 0 {
				delta = -delta
			}
			if delta >= 1.0 {
				out = append(out, newSignal(episodeID, entities.SignalCategoryAudio, entities.SignalKindEmotionalArc, w,
					capScore(4+delta*2), ""))
			}
		}
		prevWPS = wps
	}

	// Dramatic pauses between consecutive utterances
	for i := 1; i < len(utterances); i++ {
		gap := utterances[i].StartTime - utterances[i-1].EndTime
		if gap >= dramaticPauseSeconds {
			out = append(out, entities.Signal{
				EpisodeID: episodeID,
				Category:  entities.SignalCategoryAudio,
				Kind:      entities.SignalKindDramaticPause,
				StartTime: utterances[i-1].EndTime,
				EndTime:   utterances[i].StartTime,
				Score:     capScore(5 + gap),
				Detail:    fmt.Sprintf("%.1fs pause", gap),
			})
		}
	}

	return out
}

// pacingScore peaks inside the optimal band and falls off outside it
func pacingScore(wps float64) float64 {
	switch {
	case wps >= optimalWPSLow && wps <= optimalWPSHigh:
		return 8
	case wps > optimalWPSHigh:
		return capScore(8 - (wps-optimalWPSHigh)*2)
	default:
		return capScore(8 - (optimalWPSLow-wps)*3)
	}
}
