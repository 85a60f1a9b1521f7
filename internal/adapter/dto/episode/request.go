package episode

import (
	"github.com/clipforge/clipforge/internal/domain/entities"
	"gorm.io/datatypes"
)

// WordDTO is one word-level timing inside an utterance
type WordDTO struct {
	Text  string  `json:"text" validate:"required"`
	Start float64 `json:"start" validate:"min=0"`
	End   float64 `json:"end" validate:"min=0"`
}

// UtteranceDTO is one diarized utterance in an uploaded transcript
type UtteranceDTO struct {
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text" validate:"required"`
	StartTime  float64   `json:"start_time" validate:"min=0"`
	EndTime    float64   `json:"end_time" validate:"min=0"`
	Confidence float64   `json:"confidence" validate:"min=0,max=1"`
	Words      []WordDTO `json:"words,omitempty" validate:"omitempty,dive"`
}

// UploadTranscriptRequest is the body of POST
// /episodes/:id/upload-transcript. Re-uploading replaces the stored
// transcript wholesale.
type UploadTranscriptRequest struct {
	Title      string         `json:"title,omitempty"`
	GuestName  string         `json:"guest_name,omitempty"`
	MediaPath  string         `json:"media_path,omitempty"`
	Utterances []UtteranceDTO `json:"utterances" validate:"required,min=1,dive"`
}

// ToUtterances converts the payload into domain utterances
func (r *UploadTranscriptRequest) ToUtterances(episodeID string) []entities.Utterance {
	out := make([]entities.Utterance, 0, len(r.Utterances))
	for _, u := range r.Utterances {
		words := make(datatypes.JSONSlice[entities.WordTiming], 0, len(u.Words))
		for _, w := range u.Words {
			words = append(words, entities.WordTiming{Text: w.Text, Start: w.Start, End: w.End})
		}
		out = append(out, entities.Utterance{
			EpisodeID:  episodeID,
			Speaker:    u.Speaker,
			Text:       u.Text,
			StartTime:  u.StartTime,
			EndTime:    u.EndTime,
			Confidence: u.Confidence,
			Words:      words,
		})
	}
	return out
}
