package transcript

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/domain/repositories"
)

// Store syncs produced transcripts into the shared episode store so
// other tools can read them. Uploads are idempotent: the episode row is
// upserted and the utterance set replaced wholesale.
type Store struct {
	episodes   repositories.EpisodeRepository
	utterances repositories.UtteranceRepository
	logger     *zap.Logger
}

// NewStore creates a transcript store
func NewStore(episodes repositories.EpisodeRepository, utterances repositories.UtteranceRepository, logger *zap.Logger) *Store {
	return &Store{episodes: episodes, utterances: utterances, logger: logger}
}

// Upload validates and writes a transcript for an episode. Re-running
// the same upload leaves exactly one copy of every utterance.
func (s *Store) Upload(ctx context.Context, episode *entities.Episode, raw []entities.Utterance) error {
	normalized, err := Normalize(episode.ID, raw)
	if err != nil {
		return err
	}

	episode.HasTranscript = true
	if episode.DurationSeconds == 0 && len(normalized) > 0 {
		episode.DurationSeconds = normalized[len(normalized)-1].EndTime
	}

	if err := s.episodes.Upsert(ctx, episode); err != nil {
		return apperrors.ErrUploadFailed(episode.ID, err)
	}
	if err := s.utterances.ReplaceForEpisode(ctx, episode.ID, normalized); err != nil {
		return apperrors.ErrUploadFailed(episode.ID, err)
	}

	if s.logger != nil {
		s.logger.Info("transcript.uploaded",
			zap.String("episode_id", episode.ID),
			zap.Int("utterances", len(normalized)),
		)
	}
	return nil
}

// Load reads the stored transcript for an episode
func (s *Store) Load(ctx context.Context, episodeID string) ([]entities.Utterance, error) {
	utterances, err := s.utterances.ListByEpisode(ctx, episodeID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list utterances", err)
	}
	return utterances, nil
}
