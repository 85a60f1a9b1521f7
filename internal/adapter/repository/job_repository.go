package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// JobRepository handles clip job data operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new clip job
func (r *JobRepository) Create(ctx context.Context, job *entities.ClipJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a clip job by ID
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ClipJob, error) {
	var job entities.ClipJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetActiveByEpisode retrieves the queued or running job for an episode,
// if one exists
func (r *JobRepository) GetActiveByEpisode(ctx context.Context, episodeID string) (*entities.ClipJob, error) {
	var job entities.ClipJob
	if err := r.db.WithContext(ctx).
		Where("episode_id = ? AND status IN ?", episodeID,
			[]entities.JobStatus{entities.JobStatusQueued, entities.JobStatusRunning}).
		Order("created_at DESC").
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Update persists the full job row
func (r *JobRepository) Update(ctx context.Context, job *entities.ClipJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.ClipJob{}).
		Where("id = ?", job.ID).
		Save(job).Error
}

// ListStale retrieves running jobs that have not been touched recently.
// The sweeper marks them failed so crashed runs release their episode.
func (r *JobRepository) ListStale(ctx context.Context, olderThanMinutes int) ([]entities.ClipJob, error) {
	if olderThanMinutes <= 0 {
		olderThanMinutes = 60
	}
	cutoff := time.Now().Add(-time.Duration(olderThanMinutes) * time.Minute)
	var jobs []entities.ClipJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", entities.JobStatusRunning, cutoff).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// SaveCandidates inserts a batch of clip candidates
func (r *JobRepository) SaveCandidates(ctx context.Context, candidates []entities.ClipCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(candidates, 50).Error
}

// UpdateCandidate persists changes to a single candidate
func (r *JobRepository) UpdateCandidate(ctx context.Context, candidate *entities.ClipCandidate) error {
	if candidate == nil {
		return errors.New("candidate cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.ClipCandidate{}).
		Where("id = ?", candidate.ID).
		Save(candidate).Error
}

// ListCandidatesByJob retrieves a job's candidates ordered by score then
// earliest start
func (r *JobRepository) ListCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]entities.ClipCandidate, error) {
	var candidates []entities.ClipCandidate
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("score DESC, start_time ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}
