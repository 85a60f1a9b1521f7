// Package orchestrator owns the clip job lifecycle: submission,
// staged execution, status reads, cancellation and stale-job reaping.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/domain/repositories"
	"github.com/clipforge/clipforge/internal/usecase/curation"
	"github.com/clipforge/clipforge/internal/usecase/subtitle"
	"github.com/clipforge/clipforge/internal/usecase/transcript"
	"github.com/clipforge/clipforge/pkg/config"
	"github.com/clipforge/clipforge/pkg/ffmpeg"
)

// SourceFactory builds a transcript source for a job config
type SourceFactory interface {
	ForConfig(cfg entities.JobConfig) (transcript.Source, error)
}

// TranscriptStore persists and reads the canonical transcript
type TranscriptStore interface {
	Upload(ctx context.Context, episode *entities.Episode, raw []entities.Utterance) error
	Load(ctx context.Context, episodeID string) ([]entities.Utterance, error)
}

// SignalExtractor analyzes a transcript into virality signals
type SignalExtractor interface {
	Extract(episodeID string, utterances []entities.Utterance) []entities.Signal
}

// Curator runs the finder, critic and ranker over a transcript
type Curator interface {
	Run(ctx context.Context, jobID uuid.UUID, episode *entities.Episode,
		utterances []entities.Utterance, sigs []entities.Signal, cfg entities.JobConfig) (*curation.Result, error)
}

// ClipRenderer converts one candidate range into a vertical clip file
type ClipRenderer interface {
	Render(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate,
		mode entities.ReframeMode, utterances []entities.Utterance, subtitlePath string) error
}

// SubtitleGenerator produces the ASS document for one clip
type SubtitleGenerator interface {
	Generate(clip *entities.ClipCandidate, utterances []entities.Utterance, styleName, animation string) (string, error)
}

// ArtifactStore uploads rendered files to object storage
type ArtifactStore interface {
	UploadClipFile(ctx context.Context, jobID, localPath string) (string, error)
	UploadText(ctx context.Context, jobID, fileName, content string) (string, error)
}

// MediaProber inspects the episode media file
type MediaProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
}

// StatusCache fronts job status reads. Implementations never fail reads
// hard; a miss falls through to the database.
type StatusCache interface {
	Set(ctx context.Context, job *entities.ClipJob)
	Get(ctx context.Context, jobID string) *entities.ClipJob
	Invalidate(ctx context.Context, jobID string)
}

// Deps bundles the collaborators the orchestrator drives
type Deps struct {
	Episodes    repositories.EpisodeRepository
	Jobs        repositories.JobRepository
	Sources     SourceFactory
	Transcripts TranscriptStore
	Signals     SignalExtractor
	Curation    Curator
	Reframer    ClipRenderer
	Subtitles   SubtitleGenerator
	Storage     ArtifactStore
	Prober      MediaProber
	Cache       StatusCache
	Logger      *zap.Logger
}

// Service runs clip jobs. At most one active job exists per episode and
// at most MaxConcurrentJobs run simultaneously; the rest wait queued.
type Service struct {
	cfg   config.PipelineConfig
	media config.MediaConfig
	deps  Deps

	sem chan struct{}

	submitMu sync.Mutex

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

// NewService creates the job orchestrator
func NewService(cfg config.PipelineConfig, media config.MediaConfig, deps Deps) *Service {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	return &Service{
		cfg:     cfg,
		media:   media,
		deps:    deps,
		sem:     make(chan struct{}, cfg.MaxConcurrentJobs),
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Submit validates the config, enforces the one-active-job-per-episode
// rule and starts the run asynchronously. The returned job is already
// persisted in the queued state.
func (s *Service) Submit(ctx context.Context, episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
	cfg.ApplyDefaults()

	if err := transcript.ValidateSourceConfig(cfg); err != nil {
		return nil, err
	}
	if _, err := subtitle.StyleFor(cfg.SubtitleStyle); err != nil {
		return nil, err
	}
	if !subtitle.ValidAnimation(cfg.Animation) {
		return nil, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown animation: %s", cfg.Animation))
	}
	if !validReframeMode(cfg.ReframeMode) {
		return nil, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown reframe mode: %s", cfg.ReframeMode))
	}

	episode, err := s.deps.Episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get episode", err)
	}
	if episode == nil {
		return nil, apperrors.ErrNotFound("episode")
	}

	// The check and the insert must be atomic against concurrent submits
	// for the same episode
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	active, err := s.deps.Jobs.GetActiveByEpisode(ctx, episodeID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get active job", err)
	}
	if active != nil {
		return nil, apperrors.ErrJobAlreadyRunning(episodeID)
	}

	job := entities.NewClipJob(episodeID, cfg)
	if err := s.deps.Jobs.Create(ctx, job); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create job", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.registerCancel(job.ID, cancel)
	go s.run(runCtx, job, episode)

	if s.deps.Logger != nil {
		s.deps.Logger.Info("job.submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("episode_id", episodeID),
			zap.String("source", string(cfg.Source)),
		)
	}
	return job, nil
}

// Status returns the job and its candidate trail. Fresh snapshots are
// served from cache when available; the database is the fallback and
// the source of truth.
func (s *Service) Status(ctx context.Context, jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
	var job *entities.ClipJob
	if s.deps.Cache != nil {
		job = s.deps.Cache.Get(ctx, jobID.String())
	}
	if job == nil {
		var err error
		job, err = s.deps.Jobs.GetByID(ctx, jobID)
		if err != nil {
			return nil, nil, apperrors.ErrDBQueryFailed("get job", err)
		}
		if job == nil {
			return nil, nil, apperrors.ErrNotFound("job")
		}
		if s.deps.Cache != nil {
			s.deps.Cache.Set(ctx, job)
		}
	}

	candidates, err := s.deps.Jobs.ListCandidatesByJob(ctx, jobID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("list candidates", err)
	}
	return job, candidates, nil
}

// Cancel requests cancellation. A running job stops at its next stage
// boundary; a queued job never starts. Jobs that already reached a
// terminal state cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.deps.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("get job", err)
	}
	if job == nil {
		return apperrors.ErrNotFound("job")
	}
	if job.IsTerminal() {
		return apperrors.ErrInvalidArgument("job already finished")
	}

	if cancel := s.lookupCancel(jobID); cancel != nil {
		cancel()
		if s.deps.Logger != nil {
			s.deps.Logger.Info("job.cancel_requested", zap.String("job_id", jobID.String()))
		}
		return nil
	}

	// No live goroutine, e.g. the job predates a restart. Finalize it
	// directly and release the episode.
	job.MarkCancelled()
	if err := s.deps.Jobs.Update(ctx, job); err != nil {
		return apperrors.ErrDBQueryFailed("update job", err)
	}
	if err := s.deps.Episodes.UpdateStatus(ctx, job.EpisodeID, entities.EpisodeStatusUnprocessed); err != nil {
		return apperrors.ErrDBQueryFailed("update episode status", err)
	}
	if s.deps.Cache != nil {
		s.deps.Cache.Invalidate(ctx, jobID.String())
	}
	return nil
}

func validReframeMode(mode entities.ReframeMode) bool {
	switch mode {
	case entities.ReframeModeSplit, entities.ReframeModeDynamic, entities.ReframeModeCenter, entities.ReframeModeOriginal:
		return true
	}
	return false
}

func (s *Service) registerCancel(id uuid.UUID, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[id] = cancel
}

func (s *Service) unregisterCancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

func (s *Service) lookupCancel(id uuid.UUID) context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels[id]
}
