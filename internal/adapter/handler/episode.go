package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	episodedto "github.com/clipforge/clipforge/internal/adapter/dto/episode"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/domain/repositories"
)

// TranscriptUploader stores an uploaded transcript idempotently
type TranscriptUploader interface {
	Upload(ctx context.Context, episode *entities.Episode, raw []entities.Utterance) error
}

// Episode handles episode endpoints
type Episode struct {
	episodes repositories.EpisodeRepository
	uploader TranscriptUploader
	logger   *zap.Logger
}

// NewEpisode creates an episode handler
func NewEpisode(episodes repositories.EpisodeRepository, uploader TranscriptUploader, logger *zap.Logger) *Episode {
	return &Episode{episodes: episodes, uploader: uploader, logger: logger}
}

// List handles GET /v1/episodes
func (h *Episode) List(c echo.Context) error {
	eps, err := h.episodes.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list episodes", err))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, episodedto.FromEpisodes(eps))
}

// Get handles GET /v1/episodes/:id
func (h *Episode) Get(c echo.Context) error {
	ep, err := h.episodes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get episode", err))
	}
	if ep == nil {
		return HandleError(h.logger, c, apperrors.ErrNotFound("episode"))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, episodedto.FromEpisode(ep))
}

// UploadTranscript handles POST /v1/episodes/:id/upload-transcript.
// Re-uploading the same transcript replaces the stored utterance set,
// so repeated calls leave exactly one copy.
func (h *Episode) UploadTranscript(c echo.Context) error {
	episodeID := c.Param("id")

	var req episodedto.UploadTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	ep, err := h.episodes.GetByID(c.Request().Context(), episodeID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("get episode", err))
	}
	if ep == nil {
		ep = &entities.Episode{
			ID:            episodeID,
			EpisodeNumber: episodeNumberFromID(episodeID),
			Status:        entities.EpisodeStatusUnprocessed,
		}
	}
	if req.Title != "" {
		ep.Title = req.Title
	}
	if ep.Title == "" {
		ep.Title = episodeID
	}
	if req.GuestName != "" {
		ep.GuestName = req.GuestName
	}
	if req.MediaPath != "" {
		ep.MediaPath = req.MediaPath
	}

	raw := req.ToUtterances(episodeID)
	if err := h.uploader.Upload(c.Request().Context(), ep, raw); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, episodedto.UploadTranscriptResponse{
		EpisodeID:  episodeID,
		Utterances: len(raw),
	})
}

// episodeNumberFromID parses the numeric part of an EP-prefixed id,
// e.g. EP042 -> 42. Unknown formats yield 0.
func episodeNumberFromID(id string) int {
	trimmed := strings.TrimPrefix(strings.ToUpper(id), "EP")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}
