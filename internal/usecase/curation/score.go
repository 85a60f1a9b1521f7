package curation

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

const (
	// hardMinFactor: anything shorter than this fraction of the
	// configured minimum is unusable no matter how well it scores
	hardMinFactor = 0.5
	// hardMaxSeconds is the absolute ceiling for a short clip
	hardMaxSeconds = 180.0
	// pendingReviewScore: out-of-band clips at or above this score are
	// kept for manual review instead of being dropped
	pendingReviewScore = 50.0
	// dedupOverlapRatio: candidates overlapping more than this fraction
	// of the shorter one are duplicates
	dedupOverlapRatio = 0.5
)

// durationVerdict classifies a clip length against the configured band
type durationVerdict int

const (
	durationOK durationVerdict = iota
	durationOutOfBand
	durationInvalid
)

func checkDuration(d, minDur, maxDur float64) durationVerdict {
	if d < minDur*hardMinFactor || d > hardMaxSeconds {
		return durationInvalid
	}
	if d < minDur || d > maxDur {
		return durationOutOfBand
	}
	return durationOK
}

// sanitizeRange clamps model-produced timestamps into the episode and
// reports whether the range survives as usable
func sanitizeRange(start, end, episodeDuration float64) (float64, float64, bool) {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return 0, 0, false
	}
	if start < 0 {
		start = 0
	}
	if episodeDuration > 0 && end > episodeDuration {
		end = episodeDuration
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// dedup removes near-duplicate candidates. When two candidates overlap
// more than half of the shorter one, the higher-scored (or earlier, on
// a tie) survives.
func dedup(candidates []entities.ClipCandidate) []entities.ClipCandidate {
	sorted := make([]entities.ClipCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var kept []entities.ClipCandidate
	for _, c := range sorted {
		dup := false
		for i := range kept {
			overlap := c.Overlap(&kept[i])
			shorter := c.Duration()
			if kept[i].Duration() < shorter {
				shorter = kept[i].Duration()
			}
			if shorter > 0 && overlap/shorter > dedupOverlapRatio {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].StartTime < kept[j].StartTime
	})
	return kept
}

// selectTop applies the score floor, ordering and truncation rules to
// ranked candidates: score descending, ties broken by earliest start,
// at most topN results at or above minScore.
func selectTop(candidates []entities.ClipCandidate, minScore float64, topN int) []entities.ClipCandidate {
	var eligible []entities.ClipCandidate
	for _, c := range candidates {
		if c.Status == entities.ClipStatusRanked && c.Score >= minScore {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].StartTime < eligible[j].StartTime
	})
	if topN > 0 && len(eligible) > topN {
		eligible = eligible[:topN]
	}
	return eligible
}
