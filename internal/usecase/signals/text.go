package signals

import (
	"regexp"
	"strings"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Phrase inventories for the text analyzer. Matching is case-insensitive
// over the window text.
var (
	hookPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(the craziest|the weirdest|the biggest mistake|you won't believe)\b`),
		regexp.MustCompile(`(?i)\b(nobody (talks about|tells you)|no one (talks about|tells you))\b`),
		regexp.MustCompile(`(?i)\b(here'?s (the thing|what|why|how))\b`),
		regexp.MustCompile(`(?i)\b(what (most people|everyone) (gets wrong|doesn'?t know))\b`),
		regexp.MustCompile(`(?i)\b(the (one|single) (thing|reason|secret))\b`),
		regexp.MustCompile(`(?i)\b(let me tell you)\b`),
	}

	storyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(one day|one time|back (then|when)|years ago)\b`),
		regexp.MustCompile(`(?i)\b(i remember|i'?ll never forget)\b`),
		regexp.MustCompile(`(?i)\b(and then (i|we|he|she|they))\b`),
		regexp.MustCompile(`(?i)\b(it all (started|changed|began))\b`),
		regexp.MustCompile(`(?i)\b(long story short)\b`),
	}

	controversyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(unpopular opinion|hot take|controversial)\b`),
		regexp.MustCompile(`(?i)\b(i ((completely|totally) )?disagree)\b`),
		regexp.MustCompile(`(?i)\b((the|honest) truth is|honestly,? i think)\b`),
		regexp.MustCompile(`(?i)\b(everyone is wrong|people are wrong|that'?s a (lie|myth))\b`),
		regexp.MustCompile(`(?i)\b(i don'?t care (what|if))\b`),
	}

	emotionWords = []string{
		"amazing", "incredible", "insane", "crazy", "terrifying", "devastating",
		"heartbreaking", "unbelievable", "shocking", "furious", "obsessed",
		"love", "hate", "afraid", "proud", "ashamed",
	}

	questionRe = regexp.MustCompile(`\?`)
)

// quotableMaxWords caps how long a statement can be and still land as a
// pull quote
const quotableMaxWords = 15

type textAnalyzer struct{}

func (textAnalyzer) analyze(episodeID string, utterances []entities.Utterance) []entities.Signal {
	var out []entities.Signal
	for _, w := range slide(utterances, windowSeconds, windowStride) {
		text := w.text()
		lower := strings.ToLower(text)

		if score := patternScore(text, hookPatterns, 3.5); score >= 3 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryText, entities.SignalKindHook, w, score, ""))
		}
		if score := patternScore(text, storyPatterns, 3); score >= 3 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryText, entities.SignalKindStory, w, score, ""))
		}
		if score := patternScore(text, controversyPatterns, 4); score >= 4 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryText, entities.SignalKindControversy, w, score, ""))
		}
		if n := len(questionRe.FindAllString(text, -1)); n > 0 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryText, entities.SignalKindQuestion, w, capScore(float64(n)*2.5), ""))
		}
		if score := emotionScore(lower); score >= 3 {
			out = append(out, newSignal(episodeID, entities.SignalCategoryText, entities.SignalKindEmotion, w, score, ""))
		}

		for _, u := range w.utterances {
			if quote, ok := quotable(u.Text); ok {
				out = append(out, entities.Signal{
					EpisodeID: episodeID,
					Category:  entities.SignalCategoryText,
					Kind:      entities.SignalKindQuotable,
					StartTime: u.StartTime,
					EndTime:   u.EndTime,
					Score:     7,
					Detail:    quote,
				})
			}
		}
	}
	return out
}

func patternScore(text string, patterns []*regexp.Regexp, weight float64) float64 {
	matches := 0
	for _, re := range patterns {
		matches += len(re.FindAllString(text, -1))
	}
	return capScore(float64(matches) * weight)
}

func emotionScore(lower string) float64 {
	hits := 0
	for _, w := range emotionWords {
		hits += strings.Count(lower, w)
	}
	return capScore(float64(hits) * 1.5)
}

// quotable flags short declarative statements that carry at least one
// strong word
func quotable(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)
	if len(words) < 4 || len(words) > quotableMaxWords {
		return "", false
	}
	if strings.HasSuffix(trimmed, "?") {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, w := range emotionWords {
		if strings.Contains(lower, w) {
			return trimmed, true
		}
	}
	return "", false
}

func capScore(v float64) float64 {
	if v > 10 {
		return 10
	}
	return v
}

func newSignal(episodeID string, category entities.SignalCategory, kind entities.SignalKind, w window, score float64, detail string) entities.Signal {
	return entities.Signal{
		EpisodeID: episodeID,
		Category:  category,
		Kind:      kind,
		StartTime: w.start,
		EndTime:   w.end,
		Score:     score,
		Detail:    detail,
	}
}
