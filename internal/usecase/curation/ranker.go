package curation

import (
	"context"
	"errors"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/usecase/transcript"
)

type rankerResponse struct {
	RankedClips []struct {
		StartTime     float64                `json:"start_time"`
		EndTime       float64                `json:"end_time"`
		Title         string                 `json:"title"`
		Summary       string                 `json:"summary"`
		Category      string                 `json:"category"`
		ViralityScore entities.ViralityScore `json:"virality_score"`
		Hashtags      []string               `json:"suggested_hashtags"`
	} `json:"ranked_clips"`
}

// rank scores the approved candidates across the ten dimensions and
// freezes them. Well-scored clips whose final duration drifted outside
// the configured band go to pending review instead of the ranked set.
func (p *Pipeline) rank(ctx context.Context, candidates []entities.ClipCandidate,
	utterances []entities.Utterance, cfg entities.JobConfig, episodeDuration float64) ([]entities.ClipCandidate, error) {

	var approved []entities.ClipCandidate
	for _, c := range candidates {
		if c.Status == entities.ClipStatusApproved {
			approved = append(approved, c)
		}
	}
	if len(approved) == 0 {
		return nil, apperrors.ErrCurationStageFailed(StageRanking, errors.New("no approved candidates to rank"))
	}

	var resp rankerResponse
	user := rankerUserPrompt(approved, transcript.FullText(utterances))
	if err := p.chatJSON(ctx, StageRanking, rankerSystemPrompt, user, &resp); err != nil {
		return nil, err
	}

	rankedAny := false
	for i := range candidates {
		c := &candidates[i]
		if c.Status != entities.ClipStatusApproved {
			continue
		}

		scored := false
		for _, rc := range resp.RankedClips {
			if !closeEnough(c.StartTime, rc.StartTime) || !closeEnough(c.EndTime, rc.EndTime) {
				continue
			}
			// The ranker may have tightened the cut
			if start, end, ok := sanitizeRange(rc.StartTime, rc.EndTime, episodeDuration); ok {
				c.StartTime = start
				c.EndTime = end
			}
			c.Title = rc.Title
			c.Summary = rc.Summary
			c.Category = rc.Category
			c.SuggestedHashtags = rc.Hashtags
			c.Finalize(clampScore(rc.ViralityScore))
			scored = true
			break
		}
		if !scored {
			c.Reject(entities.RejectionLowQuality)
			continue
		}

		switch checkDuration(c.Duration(), cfg.MinDuration, cfg.MaxDuration) {
		case durationInvalid:
			if c.Duration() < cfg.MinDuration {
				c.Reject(entities.RejectionTooShort)
			} else {
				c.Reject(entities.RejectionTooLong)
			}
		case durationOutOfBand:
			if c.Score >= pendingReviewScore {
				c.MarkPendingReview()
			} else if c.Duration() < cfg.MinDuration {
				c.Reject(entities.RejectionTooShort)
			} else {
				c.Reject(entities.RejectionTooLong)
			}
		default:
			rankedAny = true
		}
	}

	if !rankedAny {
		return nil, apperrors.ErrCurationStageFailed(StageRanking, errors.New("ranking left no usable clips"))
	}
	return candidates, nil
}

// clampScore forces every dimension into 0..10
func clampScore(v entities.ViralityScore) entities.ViralityScore {
	c := func(f float64) float64 {
		if f < 0 {
			return 0
		}
		if f > 10 {
			return 10
		}
		return f
	}
	return entities.ViralityScore{
		HookStrength:        c(v.HookStrength),
		Quotability:         c(v.Quotability),
		Storytelling:        c(v.Storytelling),
		Controversy:         c(v.Controversy),
		EnergyLevel:         c(v.EnergyLevel),
		Pacing:              c(v.Pacing),
		EmotionalArc:        c(v.EmotionalArc),
		StandaloneClarity:   c(v.StandaloneClarity),
		SegmentCompleteness: c(v.SegmentCompleteness),
		OptimalDuration:     c(v.OptimalDuration),
	}
}
