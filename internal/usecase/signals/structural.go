package signals

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// structuralWindowSizes are the candidate clip lengths the structural
// analyzer probes, bracketing the ideal short-clip duration.
var structuralWindowSizes = []float64{30, 45, 60, 75}

// idealClipSeconds is where duration-fit scoring peaks
const idealClipSeconds = 45.0

var (
	startIndicators = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(so|okay|alright|now|look|listen)[,.]?\s`),
		regexp.MustCompile(`(?i)\b(let me (explain|tell you)|the (first|key) thing)\b`),
		regexp.MustCompile(`(?i)\b(here'?s (how|why|what))\b`),
		regexp.MustCompile(`(?i)\b(my (advice|take) is)\b`),
	}

	endIndicators = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(that'?s (why|the point|the lesson|it))\b`),
		regexp.MustCompile(`(?i)\b(at the end of the day|bottom line)\b`),
		regexp.MustCompile(`(?i)\b(and that changed everything)\b`),
		regexp.MustCompile(`(?i)\b(so (remember|that'?s))\b`),
	}

	// contextDependentRe flags openers that lean on earlier conversation
	contextDependentRe = regexp.MustCompile(`(?i)^\s*(like (i|you) (said|mentioned)|as (i|we) (said|discussed)|going back to|speaking of (that|which))`)
)

type structuralAnalyzer struct{}

func (structuralAnalyzer) analyze(episodeID string, utterances []entities.Utterance) []entities.Signal {
	var out []entities.Signal

	for _, size := range structuralWindowSizes {
		for _, w := range slide(utterances, size, size/2) {
			first := w.utterances[0].Text
			last := w.utterances[len(w.utterances)-1].Text

			starts := matchAny(first, startIndicators)
			ends := matchAny(last, endIndicators)

			if starts {
				out = append(out, newSignal(episodeID, entities.SignalCategoryStructural, entities.SignalKindClearStart, w, 7, ""))
			}
			if ends {
				out = append(out, newSignal(episodeID, entities.SignalCategoryStructural, entities.SignalKindClearEnd, w, 7, ""))
			}
			if starts && ends && !contextDependentRe.MatchString(first) {
				out = append(out, newSignal(episodeID, entities.SignalCategoryStructural, entities.SignalKindSelfContained, w, 9, ""))
			}

			if changes := speakerChanges(w.utterances); changes >= 2 {
				out = append(out, newSignal(episodeID, entities.SignalCategoryStructural, entities.SignalKindSpeakerDynamics, w,
					capScore(4+float64(changes)), fmt.Sprintf("%d turns", changes)))
			}

			if fit := durationFit(size); fit >= 7 {
				out = append(out, newSignal(episodeID, entities.SignalCategoryStructural, entities.SignalKindDurationFit, w, fit, ""))
			}
		}
	}

	return out
}

func matchAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func speakerChanges(utterances []entities.Utterance) int {
	changes := 0
	for i := 1; i < len(utterances); i++ {
		if !strings.EqualFold(utterances[i].Speaker, utterances[i-1].Speaker) {
			changes++
		}
	}
	return changes
}

// durationFit peaks at the ideal length and decays linearly
func durationFit(seconds float64) float64 {
	diff := seconds - idealClipSeconds
	if diff < 0 {
		diff = -diff
	}
	return capScore(10 - diff/10)
}
