package curation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// finderTargetMin is the per-call over-generation floor the finder is
// prompted for
const finderTargetMin = 15

type finderResponse struct {
	Candidates []struct {
		StartTime   float64 `json:"start_time"`
		EndTime     float64 `json:"end_time"`
		Reason      string  `json:"reason"`
		SignalMatch string  `json:"signal_match"`
	} `json:"candidates"`
}

// find over-generates rough candidates, chunking long transcripts and
// deduplicating across chunk boundaries
func (p *Pipeline) find(ctx context.Context, jobID uuid.UUID, episodeID string,
	utterances []entities.Utterance, sigs []entities.Signal,
	cfg entities.JobConfig, episodeDuration float64) ([]entities.ClipCandidate, error) {

	var all []entities.ClipCandidate
	for _, ch := range p.chunkTranscript(utterances) {
		var chunkSigs []entities.Signal
		for _, s := range sigs {
			if s.StartTime >= ch.start && s.StartTime < ch.end {
				chunkSigs = append(chunkSigs, s)
			}
		}

		var resp finderResponse
		user := finderUserPrompt(ch.text(), chunkSigs, cfg.MinDuration, cfg.MaxDuration)
		if err := p.chatJSON(ctx, StageFinding, finderSystemPrompt, user, &resp); err != nil {
			return nil, err
		}

		for _, rc := range resp.Candidates {
			start, end, ok := sanitizeRange(rc.StartTime, rc.EndTime, episodeDuration)
			if !ok {
				continue
			}
			c := entities.NewClipCandidate(jobID, episodeID, start, end)
			c.Reason = rc.Reason
			c.SignalMatch = rc.SignalMatch
			all = append(all, *c)
		}
	}

	all = dedup(all)
	if len(all) == 0 {
		return nil, apperrors.ErrCurationStageFailed(StageFinding, errors.New("finder produced no usable candidates"))
	}
	return all, nil
}
