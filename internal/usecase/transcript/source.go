// Package transcript turns episode media or external stores into the
// canonical utterance form the rest of the pipeline consumes.
package transcript

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Source produces the canonical transcript for an episode
type Source interface {
	Name() entities.TranscriptionSource
	Fetch(ctx context.Context, episode *entities.Episode) ([]entities.Utterance, error)
}

// ValidateSourceConfig checks that the job config carries the
// credentials its chosen source needs. Called at submission time so bad
// configs are rejected before a job is created.
func ValidateSourceConfig(cfg entities.JobConfig) error {
	switch cfg.Source {
	case entities.SourceLocalWhisper:
		return nil
	case entities.SourceAssemblyAI:
		if cfg.AssemblyAIAPIKey == "" {
			return apperrors.ErrInvalidArgument("assemblyai_api_key is required for the assemblyai source")
		}
		return nil
	case entities.SourceSupabaseCustom:
		if cfg.SupabaseURL == "" {
			return apperrors.ErrInvalidArgument("supabase_url is required for the supabase_custom source")
		}
		if cfg.SupabaseKey == "" {
			return apperrors.ErrInvalidArgument("supabase_key is required for the supabase_custom source")
		}
		return nil
	default:
		return apperrors.ErrInvalidArgument(fmt.Sprintf("unknown transcription_source: %s", cfg.Source))
	}
}

// Factory builds the right source for a job config
type Factory struct {
	whisperPath string
	logger      *zap.Logger
}

// NewFactory creates a source factory
func NewFactory(whisperPath string, logger *zap.Logger) *Factory {
	return &Factory{whisperPath: whisperPath, logger: logger}
}

// ForConfig returns a source for the job's configured backend. The
// config must already have passed ValidateSourceConfig.
func (f *Factory) ForConfig(cfg entities.JobConfig) (Source, error) {
	if err := ValidateSourceConfig(cfg); err != nil {
		return nil, err
	}
	switch cfg.Source {
	case entities.SourceLocalWhisper:
		return NewWhisperSource(f.whisperPath, f.logger), nil
	case entities.SourceAssemblyAI:
		return NewAssemblyAISource(cfg.AssemblyAIAPIKey, f.logger), nil
	case entities.SourceSupabaseCustom:
		return NewSupabaseSource(cfg.SupabaseURL, cfg.SupabaseKey, f.logger), nil
	}
	return nil, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown transcription_source: %s", cfg.Source))
}
