package transcript

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// SupabaseSource reads pre-existing transcripts from an external
// Postgres store that follows the shared episodes/utterances schema.
// The store is reached over the Supabase direct connection: the project
// URL names the host, the service key is the database password.
type SupabaseSource struct {
	projectURL string
	serviceKey string
	logger     *zap.Logger

	// open is swappable in tests
	open func(dsn string) (*gorm.DB, error)
}

// NewSupabaseSource creates a source for the given project
func NewSupabaseSource(projectURL, serviceKey string, logger *zap.Logger) *SupabaseSource {
	return &SupabaseSource{
		projectURL: projectURL,
		serviceKey: serviceKey,
		logger:     logger,
		open: func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{
				Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			})
		},
	}
}

// Name returns the source identifier
func (s *SupabaseSource) Name() entities.TranscriptionSource {
	return entities.SourceSupabaseCustom
}

// dsn derives the direct-connection string from the project URL
func (s *SupabaseSource) dsn() (string, error) {
	raw := strings.TrimSpace(s.projectURL)
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid project url: %q", raw)
	}
	host := u.Hostname()
	// project-ref.supabase.co exposes postgres at db.project-ref.supabase.co
	if !strings.HasPrefix(host, "db.") {
		host = "db." + host
	}
	return fmt.Sprintf("host=%s port=5432 user=postgres password=%s dbname=postgres sslmode=require",
		host, s.serviceKey), nil
}

// Fetch reads the stored utterances for the episode ordered by start
// time
func (s *SupabaseSource) Fetch(ctx context.Context, episode *entities.Episode) ([]entities.Utterance, error) {
	dsn, err := s.dsn()
	if err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}

	db, err := s.open(dsn)
	if err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}
	if sqlDB, derr := db.DB(); derr == nil {
		defer sqlDB.Close()
	}

	var utterances []entities.Utterance
	if err := db.WithContext(ctx).
		Where("episode_id = ?", episode.ID).
		Order("start_time ASC").
		Find(&utterances).Error; err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}

	if s.logger != nil {
		s.logger.Info("supabase.fetched",
			zap.String("episode_id", episode.ID),
			zap.Int("utterances", len(utterances)),
		)
	}

	return Normalize(episode.ID, utterances)
}
