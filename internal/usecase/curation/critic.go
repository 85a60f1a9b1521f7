package curation

import (
	"context"
	"errors"
	"math"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/usecase/transcript"
)

// matchToleranceSeconds pairs agent responses back to candidates by
// their time range
const matchToleranceSeconds = 1.5

type criticResponse struct {
	Approved []struct {
		StartTime      float64 `json:"start_time"`
		EndTime        float64 `json:"end_time"`
		ApprovalReason string  `json:"approval_reason"`
	} `json:"approved"`
	Rejected []struct {
		StartTime       float64 `json:"start_time"`
		EndTime         float64 `json:"end_time"`
		RejectionReason string  `json:"rejection_reason"`
	} `json:"rejected"`
}

// critique filters the finder's output. Hard duration violations and
// avoid-zone overlaps are rejected locally before the agent sees them;
// the agent judges the rest. Every dropped candidate carries a reason
// code.
func (p *Pipeline) critique(ctx context.Context, candidates []entities.ClipCandidate,
	utterances []entities.Utterance, cfg entities.JobConfig, episodeDuration float64) ([]entities.ClipCandidate, error) {

	var reviewable []entities.ClipCandidate
	for i := range candidates {
		c := &candidates[i]
		if checkDuration(c.Duration(), cfg.MinDuration, cfg.MaxDuration) == durationInvalid {
			if c.Duration() < cfg.MinDuration {
				c.Reject(entities.RejectionTooShort)
			} else {
				c.Reject(entities.RejectionTooLong)
			}
			continue
		}
		if inAvoidZone(c, cfg, episodeDuration) {
			c.Reject(entities.RejectionAvoidZone)
			continue
		}
		reviewable = append(reviewable, *c)
	}
	if len(reviewable) == 0 {
		return nil, apperrors.ErrCurationStageFailed(StageCritiquing, errors.New("no candidates within hard duration limits"))
	}

	var resp criticResponse
	user := criticUserPrompt(reviewable, transcript.FullText(utterances), cfg.MinDuration, cfg.MaxDuration)
	if err := p.chatJSON(ctx, StageCritiquing, criticSystemPrompt, user, &resp); err != nil {
		return nil, err
	}

	approvedAny := false
	for i := range candidates {
		c := &candidates[i]
		if c.Status == entities.ClipStatusRejected {
			continue
		}

		if reason, ok := matchApproval(c, &resp); ok {
			c.Approve(reason)
			approvedAny = true
			continue
		}
		if code, ok := matchRejection(c, &resp); ok {
			c.Reject(code)
			continue
		}
		// The agent never mentioned this candidate; treat silence as a drop
		c.Reject(entities.RejectionLowQuality)
	}

	if !approvedAny {
		return nil, apperrors.ErrCurationStageFailed(StageCritiquing, errors.New("critic approved no candidates"))
	}
	return candidates, nil
}

// inAvoidZone reports whether the candidate overlaps a configured
// intro or outro zone. The outro zone needs a known episode duration.
func inAvoidZone(c *entities.ClipCandidate, cfg entities.JobConfig, episodeDuration float64) bool {
	if cfg.AvoidIntroSec > 0 && c.StartTime < cfg.AvoidIntroSec {
		return true
	}
	if cfg.AvoidOutroSec > 0 && episodeDuration > 0 && c.EndTime > episodeDuration-cfg.AvoidOutroSec {
		return true
	}
	return false
}

func matchApproval(c *entities.ClipCandidate, resp *criticResponse) (string, bool) {
	for _, a := range resp.Approved {
		if closeEnough(c.StartTime, a.StartTime) && closeEnough(c.EndTime, a.EndTime) {
			return a.ApprovalReason, true
		}
	}
	return "", false
}

func matchRejection(c *entities.ClipCandidate, resp *criticResponse) (entities.RejectionReason, bool) {
	for _, r := range resp.Rejected {
		if closeEnough(c.StartTime, r.StartTime) && closeEnough(c.EndTime, r.EndTime) {
			return normalizeRejection(r.RejectionReason), true
		}
	}
	return "", false
}

func normalizeRejection(raw string) entities.RejectionReason {
	switch entities.RejectionReason(raw) {
	case entities.RejectionIncompleteThought,
		entities.RejectionWeakHook,
		entities.RejectionTooShort,
		entities.RejectionTooLong,
		entities.RejectionContextDependent,
		entities.RejectionAvoidZone,
		entities.RejectionLowQuality:
		return entities.RejectionReason(raw)
	}
	return entities.RejectionLowQuality
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= matchToleranceSeconds
}
