package episode

import (
	"time"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// EpisodeResponse represents an episode in responses
type EpisodeResponse struct {
	ID              string    `json:"id"`
	EpisodeNumber   int       `json:"episode_number"`
	Title           string    `json:"title"`
	GuestName       string    `json:"guest_name,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	HasVideo        bool      `json:"has_video"`
	HasTranscript   bool      `json:"has_transcript"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UploadTranscriptResponse acknowledges a stored transcript
type UploadTranscriptResponse struct {
	EpisodeID  string `json:"episode_id"`
	Utterances int    `json:"utterances"`
}

// FromEpisode maps an episode entity into the response shape
func FromEpisode(e *entities.Episode) EpisodeResponse {
	return EpisodeResponse{
		ID:              e.ID,
		EpisodeNumber:   e.EpisodeNumber,
		Title:           e.Title,
		GuestName:       e.GuestName,
		DurationSeconds: e.DurationSeconds,
		HasVideo:        e.HasVideo,
		HasTranscript:   e.HasTranscript,
		Status:          string(e.Status),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// FromEpisodes maps a list of episodes
func FromEpisodes(eps []entities.Episode) []EpisodeResponse {
	out := make([]EpisodeResponse, 0, len(eps))
	for i := range eps {
		out = append(out, FromEpisode(&eps[i]))
	}
	return out
}
