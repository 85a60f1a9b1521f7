package job

import (
	"time"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// SubmitJobResponse acknowledges an accepted job
type SubmitJobResponse struct {
	JobID     string `json:"job_id"`
	EpisodeID string `json:"episode_id"`
	Status    string `json:"status"`
}

// JobFileResponse is one stored artifact with its download link
type JobFileResponse struct {
	Object string `json:"object"`
	URL    string `json:"url"`
}

// ClipResponse represents one candidate in status responses
type ClipResponse struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`

	Title             string   `json:"title,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	Category          string   `json:"category,omitempty"`
	SuggestedHashtags []string `json:"suggested_hashtags,omitempty"`

	Score           float64                `json:"score"`
	ScoreBreakdown  entities.ViralityScore `json:"score_breakdown"`
	Status          string                 `json:"status"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`

	RenderedPath string `json:"rendered_path,omitempty"`
	SubtitlePath string `json:"subtitle_path,omitempty"`
}

// JobStatusResponse represents a job and its candidate trail
type JobStatusResponse struct {
	ID        string `json:"id"`
	EpisodeID string `json:"episode_id"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Message   string `json:"message,omitempty"`

	FailStage *string `json:"fail_stage,omitempty"`
	LastError *string `json:"last_error,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Clips []ClipResponse `json:"clips"`
}

// FromJob maps a job and its candidates into the status response
func FromJob(j *entities.ClipJob, candidates []entities.ClipCandidate) *JobStatusResponse {
	resp := &JobStatusResponse{
		ID:          j.ID.String(),
		EpisodeID:   j.EpisodeID,
		Stage:       string(j.Stage),
		Status:      string(j.Status),
		Progress:    j.Progress,
		Message:     j.Message,
		FailStage:   j.FailStage,
		LastError:   j.LastError,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		Clips:       make([]ClipResponse, 0, len(candidates)),
	}
	for i := range candidates {
		resp.Clips = append(resp.Clips, fromCandidate(&candidates[i]))
	}
	return resp
}

func fromCandidate(c *entities.ClipCandidate) ClipResponse {
	return ClipResponse{
		ID:                c.ID.String(),
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		Duration:          c.Duration(),
		Title:             c.Title,
		Summary:           c.Summary,
		Category:          c.Category,
		SuggestedHashtags: c.SuggestedHashtags,
		Score:             c.Score,
		ScoreBreakdown:    c.ScoreBreakdown,
		Status:            string(c.Status),
		RejectionReason:   string(c.RejectionReason),
		RenderedPath:      c.RenderedPath,
		SubtitlePath:      c.SubtitlePath,
	}
}
