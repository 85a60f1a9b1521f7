package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
)

// SweepStale fails jobs that have made no progress for the configured
// window. These are usually casualties of a crashed worker; failing
// them frees their episode for resubmission.
func (s *Service) SweepStale(ctx context.Context) (int, error) {
	stale, err := s.deps.Jobs.ListStale(ctx, s.cfg.StaleJobMinutes)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("list stale jobs", err)
	}

	swept := 0
	for i := range stale {
		job := &stale[i]

		// A job with a live goroutine is still making progress on its
		// current stage; leave it to its own timeout
		if s.lookupCancel(job.ID) != nil {
			continue
		}

		reason := fmt.Sprintf("no progress for %d minutes", s.cfg.StaleJobMinutes)
		s.finishFailed(job, job.Stage, reason)
		swept++
	}

	if swept > 0 && s.deps.Logger != nil {
		s.deps.Logger.Warn("job.sweep", zap.Int("swept", swept))
	}
	return swept, nil
}

// StartSweeper runs SweepStale periodically until ctx is cancelled
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepStale(ctx); err != nil && s.deps.Logger != nil {
					s.deps.Logger.Error("job.sweep_failed", zap.Error(err))
				}
			}
		}
	}()
}
