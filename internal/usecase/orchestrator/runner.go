package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/usecase/curation"
)

// Progress checkpoints per stage, out of 100. Rendering spreads its
// share over the selected clips.
const (
	progressTranscribe = 10
	progressSignals    = 40
	progressCurate     = 55
	progressRender     = 75
)

// run executes the full pipeline for one job. It owns the job's
// lifecycle from here: every exit path leaves the job in a terminal
// state and the episode status consistent with it.
func (s *Service) run(ctx context.Context, job *entities.ClipJob, episode *entities.Episode) {
	defer s.unregisterCancel(job.ID)

	// Respect the concurrency cap, but let a queued job be cancelled
	// before it ever starts
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.finishCancelled(job, episode)
		return
	}

	if err := s.deps.Episodes.UpdateStatus(context.Background(), episode.ID, entities.EpisodeStatusProcessing); err != nil {
		s.logRunError(job, "episode status update failed", err)
	}

	s.probeMedia(ctx, job, episode)

	var utterances []entities.Utterance
	err := s.runStage(ctx, job, episode, entities.JobStageTranscribe, s.cfg.TranscribeTimeout, progressTranscribe,
		"fetching transcript", func(stageCtx context.Context) error {
			var stageErr error
			utterances, stageErr = s.transcribe(stageCtx, job, episode)
			return stageErr
		})
	if err != nil {
		return
	}

	var sigs []entities.Signal
	err = s.runStage(ctx, job, episode, entities.JobStageSignals, s.cfg.SignalsTimeout, progressSignals,
		"extracting signals", func(stageCtx context.Context) error {
			sigs = s.deps.Signals.Extract(episode.ID, utterances)
			return nil
		})
	if err != nil {
		return
	}

	var result *curation.Result
	err = s.runStage(ctx, job, episode, entities.JobStageCurate, s.cfg.CurationTimeout, progressCurate,
		"curating clips", func(stageCtx context.Context) error {
			var stageErr error
			result, stageErr = s.deps.Curation.Run(stageCtx, job.ID, episode, utterances, sigs, job.Config)
			if stageErr != nil {
				return stageErr
			}
			if err := s.deps.Jobs.SaveCandidates(stageCtx, result.All); err != nil {
				return apperrors.ErrDBQueryFailed("save candidates", err)
			}
			return nil
		})
	if err != nil {
		return
	}

	if len(result.Selected) == 0 {
		s.finishCompleted(job, episode, "no clips met the score floor")
		return
	}

	err = s.runStage(ctx, job, episode, entities.JobStageRender, s.cfg.RenderTimeout, progressRender,
		fmt.Sprintf("rendering %d clips", len(result.Selected)), func(stageCtx context.Context) error {
			return s.renderClips(stageCtx, job, episode, result.Selected, utterances)
		})
	if err != nil {
		return
	}

	s.finishCompleted(job, episode, fmt.Sprintf("%d clips rendered", len(result.Selected)))
}

// runStage advances the job into a stage and executes it under the
// stage timeout. Cancellation is honored here, at the boundary, and
// again when the stage body returns.
func (s *Service) runStage(ctx context.Context, job *entities.ClipJob, episode *entities.Episode,
	stage entities.JobStage, timeout time.Duration, progress int, message string, fn func(context.Context) error) error {

	if ctx.Err() != nil {
		s.finishCancelled(job, episode)
		return ctx.Err()
	}

	job.EnterStage(stage, progress, message)
	s.persist(job)

	stageCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	err := fn(stageCtx)
	cancel()

	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		s.finishCancelled(job, episode)
	case errors.Is(err, context.DeadlineExceeded):
		s.finishFailed(job, stage, apperrors.ErrStageTimeout(string(stage)).Error())
	default:
		s.finishFailed(job, stage, err.Error())
	}
	return err
}

// probeMedia fills in duration and the video flag from the media file.
// Best effort: transcript-only sources can run without media present.
func (s *Service) probeMedia(ctx context.Context, job *entities.ClipJob, episode *entities.Episode) {
	if s.deps.Prober == nil || episode.MediaPath == "" {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.deps.Prober.Probe(probeCtx, episode.MediaPath)
	if err != nil {
		s.logRunError(job, "media probe failed", err)
		return
	}

	episode.HasVideo = res.HasVideo
	if episode.DurationSeconds == 0 {
		episode.DurationSeconds = res.Duration
	}
	if err := s.deps.Episodes.Upsert(ctx, episode); err != nil {
		s.logRunError(job, "episode media update failed", err)
	}
}

// transcribe loads the stored transcript or fetches one from the
// configured source and stores it
func (s *Service) transcribe(ctx context.Context, job *entities.ClipJob, episode *entities.Episode) ([]entities.Utterance, error) {
	if episode.HasTranscript && job.Config.Source == entities.SourceLocalWhisper {
		utterances, err := s.deps.Transcripts.Load(ctx, episode.ID)
		if err != nil {
			return nil, err
		}
		if len(utterances) > 0 {
			return utterances, nil
		}
		// Flag said transcribed but the store is empty; fall through and
		// transcribe again
	}

	src, err := s.deps.Sources.ForConfig(job.Config)
	if err != nil {
		return nil, err
	}
	utterances, err := src.Fetch(ctx, episode)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Transcripts.Upload(ctx, episode, utterances); err != nil {
		return nil, err
	}
	return utterances, nil
}

// renderClips renders, subtitles and uploads each selected clip. A
// single bad clip is logged and skipped; the stage fails only when no
// clip survives.
func (s *Service) renderClips(ctx context.Context, job *entities.ClipJob, episode *entities.Episode,
	clips []entities.ClipCandidate, utterances []entities.Utterance) error {

	if episode.MediaPath == "" {
		return entities.ErrNoMedia
	}
	if err := os.MkdirAll(s.media.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rendered := 0
	for i := range clips {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		clip := &clips[i]

		if err := s.renderOne(ctx, job, episode, clip, utterances); err != nil {
			s.logRunError(job, "clip render failed", err)
			continue
		}
		rendered++

		job.Progress = progressRender + (100-progressRender)*(i+1)/len(clips)
		job.Message = fmt.Sprintf("rendered %d/%d clips", i+1, len(clips))
		s.persist(job)
	}

	if rendered == 0 {
		return apperrors.ErrRenderFailed("all", fmt.Errorf("no clip rendered successfully"))
	}
	return nil
}

func (s *Service) renderOne(ctx context.Context, job *entities.ClipJob, episode *entities.Episode,
	clip *entities.ClipCandidate, utterances []entities.Utterance) error {

	assDoc, err := s.deps.Subtitles.Generate(clip, utterances, job.Config.SubtitleStyle, job.Config.Animation)
	if err != nil {
		return err
	}

	assName := clip.ID.String() + ".ass"
	assPath := filepath.Join(s.media.OutputDir, assName)
	if err := os.WriteFile(assPath, []byte(assDoc), 0o644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}

	clipPath := filepath.Join(s.media.OutputDir, clip.ID.String()+".mp4")
	if err := s.deps.Reframer.Render(ctx, episode.MediaPath, clipPath, clip, job.Config.ReframeMode, utterances, assPath); err != nil {
		return err
	}

	// Without object storage the local paths are the artifacts
	videoObject, assObject := clipPath, assPath
	if s.deps.Storage != nil {
		videoObject, err = s.deps.Storage.UploadClipFile(ctx, job.ID.String(), clipPath)
		if err != nil {
			return apperrors.ErrStorageFailed("upload clip", err)
		}
		assObject, err = s.deps.Storage.UploadText(ctx, job.ID.String(), assName, assDoc)
		if err != nil {
			return apperrors.ErrStorageFailed("upload subtitle", err)
		}
	}

	clip.RenderedPath = videoObject
	clip.SubtitlePath = assObject
	if err := s.deps.Jobs.UpdateCandidate(ctx, clip); err != nil {
		return apperrors.ErrDBQueryFailed("update candidate", err)
	}

	if s.deps.Logger != nil {
		s.deps.Logger.Info("job.clip_rendered",
			zap.String("job_id", job.ID.String()),
			zap.String("clip_id", clip.ID.String()),
			zap.String("object", videoObject),
		)
	}
	return nil
}

func (s *Service) finishCompleted(job *entities.ClipJob, episode *entities.Episode, message string) {
	job.MarkCompleted(message)
	s.persist(job)
	s.invalidate(job)
	if err := s.deps.Episodes.UpdateStatus(context.Background(), episode.ID, entities.EpisodeStatusProcessed); err != nil {
		s.logRunError(job, "episode status update failed", err)
	}
	if s.deps.Logger != nil {
		s.deps.Logger.Info("job.completed",
			zap.String("job_id", job.ID.String()),
			zap.String("episode_id", episode.ID),
		)
	}
}

func (s *Service) finishFailed(job *entities.ClipJob, stage entities.JobStage, reason string) {
	job.MarkFailed(stage, reason)
	s.persist(job)
	s.invalidate(job)
	if err := s.deps.Episodes.UpdateStatus(context.Background(), job.EpisodeID, entities.EpisodeStatusFailed); err != nil {
		s.logRunError(job, "episode status update failed", err)
	}
	if s.deps.Logger != nil {
		s.deps.Logger.Error("job.failed",
			zap.String("job_id", job.ID.String()),
			zap.String("stage", string(stage)),
			zap.String("reason", reason),
		)
	}
}

func (s *Service) finishCancelled(job *entities.ClipJob, episode *entities.Episode) {
	s.finishCancelledJob(job)
	if err := s.deps.Episodes.UpdateStatus(context.Background(), episode.ID, entities.EpisodeStatusUnprocessed); err != nil {
		s.logRunError(job, "episode status update failed", err)
	}
}

func (s *Service) finishCancelledJob(job *entities.ClipJob) {
	job.MarkCancelled()
	s.persist(job)
	s.invalidate(job)
	if s.deps.Logger != nil {
		s.deps.Logger.Info("job.cancelled", zap.String("job_id", job.ID.String()))
	}
}

// persist writes the job row and refreshes the cached snapshot. Runs
// under a background context so a cancelled job still gets its final
// state recorded.
func (s *Service) persist(job *entities.ClipJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.deps.Jobs.Update(ctx, job); err != nil {
		s.logRunError(job, "job update failed", err)
		return
	}
	if s.deps.Cache != nil {
		s.deps.Cache.Set(ctx, job)
	}
}

func (s *Service) invalidate(job *entities.ClipJob) {
	if s.deps.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.deps.Cache.Invalidate(ctx, job.ID.String())
}

func (s *Service) logRunError(job *entities.ClipJob, msg string, err error) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error("job.run_error",
			zap.String("job_id", job.ID.String()),
			zap.String("detail", msg),
			zap.Error(err),
		)
	}
}
