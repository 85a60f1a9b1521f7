package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// utteranceBatchSize bounds a single insert statement during transcript sync
const utteranceBatchSize = 100

// UtteranceRepository handles transcript utterance data operations
type UtteranceRepository struct {
	db *gorm.DB
}

// NewUtteranceRepository creates a new utterance repository
func NewUtteranceRepository(db *gorm.DB) *UtteranceRepository {
	return &UtteranceRepository{db: db}
}

// ReplaceForEpisode atomically swaps the utterance set for an episode.
// Delete plus batched insert in one transaction keeps repeated uploads
// idempotent.
func (r *UtteranceRepository) ReplaceForEpisode(ctx context.Context, episodeID string, utterances []entities.Utterance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("episode_id = ?", episodeID).Delete(&entities.Utterance{}).Error; err != nil {
			return err
		}
		if len(utterances) == 0 {
			return nil
		}
		return tx.CreateInBatches(utterances, utteranceBatchSize).Error
	})
}

// ListByEpisode retrieves an episode's utterances ordered by start time
func (r *UtteranceRepository) ListByEpisode(ctx context.Context, episodeID string) ([]entities.Utterance, error) {
	var utterances []entities.Utterance
	if err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("start_time ASC").
		Find(&utterances).Error; err != nil {
		return nil, err
	}
	return utterances, nil
}
