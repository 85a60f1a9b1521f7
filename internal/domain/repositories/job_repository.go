package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// JobRepository defines persistence operations for clip jobs and their
// candidates
type JobRepository interface {
	Create(ctx context.Context, job *entities.ClipJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ClipJob, error)
	GetActiveByEpisode(ctx context.Context, episodeID string) (*entities.ClipJob, error)
	Update(ctx context.Context, job *entities.ClipJob) error
	ListStale(ctx context.Context, olderThanMinutes int) ([]entities.ClipJob, error)

	SaveCandidates(ctx context.Context, candidates []entities.ClipCandidate) error
	UpdateCandidate(ctx context.Context, candidate *entities.ClipCandidate) error
	ListCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]entities.ClipCandidate, error)
}
