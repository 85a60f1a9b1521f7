// Package curation runs the finder, critic and ranker agents that turn
// a transcript plus its signals into a scored clip list.
package curation

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/usecase/transcript"
	"github.com/clipforge/clipforge/pkg/llm"
)

// Stage names used in failure reporting
const (
	StageFinding    = "finding"
	StageCritiquing = "critiquing"
	StageRanking    = "ranking"
)

// Options tunes chunking and retry behaviour
type Options struct {
	MaxRetries      uint64
	ChunkChars      int
	ChunkOverlapSec float64
}

// DefaultOptions returns production defaults
func DefaultOptions() Options {
	return Options{MaxRetries: 3, ChunkChars: 6000, ChunkOverlapSec: 120}
}

// Result carries both the selected clips and the full candidate trail
// for persistence
type Result struct {
	Selected []entities.ClipCandidate
	All      []entities.ClipCandidate
}

// Pipeline is the three-stage curation state machine. Each stage is a
// pure function of its input; a stage failure discards the stage's
// partial output entirely.
type Pipeline struct {
	chat   llm.Chatter
	opts   Options
	logger *zap.Logger
}

// NewPipeline creates a curation pipeline
func NewPipeline(chat llm.Chatter, opts Options, logger *zap.Logger) *Pipeline {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.ChunkChars == 0 {
		opts.ChunkChars = 6000
	}
	return &Pipeline{chat: chat, opts: opts, logger: logger}
}

// Run executes finding, critiquing and ranking in order
func (p *Pipeline) Run(ctx context.Context, jobID uuid.UUID, episode *entities.Episode,
	utterances []entities.Utterance, sigs []entities.Signal, cfg entities.JobConfig) (*Result, error) {

	episodeDuration := episode.DurationSeconds
	if episodeDuration == 0 && len(utterances) > 0 {
		episodeDuration = utterances[len(utterances)-1].EndTime
	}

	candidates, err := p.find(ctx, jobID, episode.ID, utterances, sigs, cfg, episodeDuration)
	if err != nil {
		return nil, err
	}
	p.logStage(StageFinding, episode.ID, len(candidates))

	candidates, err = p.critique(ctx, candidates, utterances, cfg, episodeDuration)
	if err != nil {
		return nil, err
	}
	approved := 0
	for _, c := range candidates {
		if c.Status == entities.ClipStatusApproved {
			approved++
		}
	}
	p.logStage(StageCritiquing, episode.ID, approved)

	candidates, err = p.rank(ctx, candidates, utterances, cfg, episodeDuration)
	if err != nil {
		return nil, err
	}

	selected := selectTop(candidates, cfg.MinScore, cfg.TopN)
	p.logStage(StageRanking, episode.ID, len(selected))

	return &Result{Selected: selected, All: candidates}, nil
}

// chatJSON issues one agent call with bounded exponential backoff and
// decodes the JSON reply into v
func (p *Pipeline) chatJSON(ctx context.Context, stage, system, user string, v interface{}) error {
	call := func() error {
		raw, err := p.chat.Chat(ctx, system, user, true)
		if err != nil {
			return err
		}
		if err := decodeJSON(raw, v); err != nil {
			// Malformed output is worth one more roll of the dice
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 20 * time.Second
	bo.MaxElapsedTime = 0 // bounded by retry count and ctx

	if err := backoff.Retry(call, backoff.WithContext(backoff.WithMaxRetries(bo, p.opts.MaxRetries), ctx)); err != nil {
		return apperrors.ErrCurationStageFailed(stage, err)
	}
	return nil
}

func (p *Pipeline) logStage(stage, episodeID string, count int) {
	if p.logger != nil {
		p.logger.Info("curation.stage",
			zap.String("stage", stage),
			zap.String("episode_id", episodeID),
			zap.Int("candidates", count),
		)
	}
}

// chunk groups utterances into transcript chunks of roughly chunkChars
// characters with chunkOverlapSec seconds of context carried between
// consecutive chunks
type chunk struct {
	start      float64
	end        float64
	utterances []entities.Utterance
}

func (p *Pipeline) chunkTranscript(utterances []entities.Utterance) []chunk {
	if len(utterances) == 0 {
		return nil
	}

	var chunks []chunk
	first := 0
	for first < len(utterances) {
		chars := 0
		last := first
		for last < len(utterances) {
			chars += len(utterances[last].Text)
			last++
			if chars >= p.opts.ChunkChars {
				break
			}
		}

		member := utterances[first:last]
		chunks = append(chunks, chunk{
			start:      member[0].StartTime,
			end:        member[len(member)-1].EndTime,
			utterances: member,
		})
		if last >= len(utterances) {
			break
		}

		// Start the next chunk early enough to re-cover the overlap span,
		// but always make forward progress
		overlapFrom := utterances[last-1].EndTime - p.opts.ChunkOverlapSec
		next := last
		for next > first+1 && utterances[next-1].StartTime >= overlapFrom {
			next--
		}
		first = next
	}
	return chunks
}

func (c *chunk) text() string {
	return transcript.FullText(c.utterances)
}
