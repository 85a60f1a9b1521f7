package repositories

import (
	"context"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// EpisodeRepository defines persistence operations for episodes
type EpisodeRepository interface {
	Upsert(ctx context.Context, episode *entities.Episode) error
	GetByID(ctx context.Context, id string) (*entities.Episode, error)
	List(ctx context.Context) ([]entities.Episode, error)
	UpdateStatus(ctx context.Context, id string, status entities.EpisodeStatus) error
	SetFlags(ctx context.Context, id string, hasVideo, hasTranscript bool) error
}
