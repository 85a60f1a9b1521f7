package repositories

import (
	"context"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// UtteranceRepository defines persistence operations for transcript
// utterances. ReplaceForEpisode is the only write path: ingestion always
// swaps the full set so re-uploads stay idempotent.
type UtteranceRepository interface {
	ReplaceForEpisode(ctx context.Context, episodeID string, utterances []entities.Utterance) error
	ListByEpisode(ctx context.Context, episodeID string) ([]entities.Utterance, error)
}
