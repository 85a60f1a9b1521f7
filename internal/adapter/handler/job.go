package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	jobdto "github.com/clipforge/clipforge/internal/adapter/dto/job"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// JobService is the slice of the orchestrator the job handler needs
type JobService interface {
	Submit(ctx context.Context, episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error)
	Status(ctx context.Context, jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error)
	Cancel(ctx context.Context, jobID uuid.UUID) error
}

// FileStore resolves stored job artifacts into download URLs
type FileStore interface {
	ListJobFiles(ctx context.Context, jobID string) ([]string, error)
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// downloadURLExpiry bounds how long a presigned artifact link stays valid
const downloadURLExpiry = 24 * time.Hour

// Job handles clip job endpoints
type Job struct {
	service JobService
	files   FileStore
	logger  *zap.Logger
}

// NewJob creates a job handler. files may be nil when object storage is
// not configured; the files endpoint then returns an empty list.
func NewJob(service JobService, files FileStore, logger *zap.Logger) *Job {
	return &Job{service: service, files: files, logger: logger}
}

// Submit handles POST /v1/episodes/:id/process. A valid submission is
// acknowledged with 202 and the job id; processing continues in the
// background.
func (h *Job) Submit(c echo.Context) error {
	episodeID := c.Param("id")

	var req jobdto.SubmitJobRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	job, err := h.service.Submit(c.Request().Context(), episodeID, req.ToConfig())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, jobdto.SubmitJobResponse{
		JobID:     job.ID.String(),
		EpisodeID: job.EpisodeID,
		Status:    string(job.Status),
	})
}

// Status handles GET /v1/jobs/:id
func (h *Job) Status(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	job, candidates, err := h.service.Status(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, jobdto.FromJob(job, candidates))
}

// Files handles GET /v1/jobs/:id/files, listing rendered artifacts with
// presigned download links
func (h *Job) Files(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	// Confirm the job exists before touching storage
	if _, _, err := h.service.Status(c.Request().Context(), jobID); err != nil {
		return HandleError(h.logger, c, err)
	}

	files := []jobdto.JobFileResponse{}
	if h.files != nil {
		objects, err := h.files.ListJobFiles(c.Request().Context(), jobID.String())
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrStorageFailed("list job files", err))
		}
		for _, object := range objects {
			url, err := h.files.GetFileURL(c.Request().Context(), object, downloadURLExpiry)
			if err != nil {
				return HandleError(h.logger, c, apperrors.ErrStorageFailed("sign file url", err))
			}
			files = append(files, jobdto.JobFileResponse{Object: object, URL: url})
		}
	}

	return HandleSuccess(h.logger, c, http.StatusOK, files)
}

// Cancel handles DELETE /v1/jobs/:id. Cancellation is cooperative: the
// job stops at its next stage boundary.
func (h *Job) Cancel(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	if err := h.service.Cancel(c.Request().Context(), jobID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, map[string]string{
		"job_id": jobID.String(),
		"status": "cancelling",
	})
}
