package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// EpisodeRepository handles episode data operations
type EpisodeRepository struct {
	db *gorm.DB
}

// NewEpisodeRepository creates a new episode repository
func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// Upsert inserts the episode or updates its mutable columns
func (r *EpisodeRepository) Upsert(ctx context.Context, episode *entities.Episode) error {
	if episode == nil {
		return errors.New("episode cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "guest_name", "media_path", "duration_seconds", "has_video", "has_transcript", "updated_at"}),
		}).
		Create(episode).Error
}

// GetByID retrieves an episode by ID
func (r *EpisodeRepository) GetByID(ctx context.Context, id string) (*entities.Episode, error) {
	var episode entities.Episode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&episode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// List retrieves all known episodes ordered by episode number
func (r *EpisodeRepository) List(ctx context.Context) ([]entities.Episode, error) {
	var episodes []entities.Episode
	if err := r.db.WithContext(ctx).
		Order("episode_number ASC").
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// UpdateStatus updates the processing status of an episode
func (r *EpisodeRepository) UpdateStatus(ctx context.Context, id string, status entities.EpisodeStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Episode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// SetFlags updates the media availability flags of an episode
func (r *EpisodeRepository) SetFlags(ctx context.Context, id string, hasVideo, hasTranscript bool) error {
	return r.db.WithContext(ctx).
		Model(&entities.Episode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_video":      hasVideo,
			"has_transcript": hasTranscript,
			"updated_at":     time.Now(),
		}).Error
}
