package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WordTiming is a single word with its timing inside an utterance.
// Times are in seconds relative to the start of the episode.
type WordTiming struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Utterance represents a single speaker turn in an episode transcript.
// Once ingested an utterance is immutable; re-ingestion replaces the
// whole set for an episode.
type Utterance struct {
	ID             uuid.UUID                         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EpisodeID      string                            `json:"episode_id" gorm:"type:varchar(50);not null;index:idx_utterances_episode_start,priority:1"`
	Speaker        string                            `json:"speaker" gorm:"type:varchar(50);not null"`
	Text           string                            `json:"text" gorm:"type:text;not null"`
	StartTime      float64                           `json:"start_time" gorm:"not null;index:idx_utterances_episode_start,priority:2"`
	EndTime        float64                           `json:"end_time" gorm:"not null"`
	Confidence     float64                           `json:"confidence" gorm:"default:0.0"`
	UtteranceIndex int                               `json:"utterance_index" gorm:"not null"`
	Words          datatypes.JSONSlice[WordTiming]   `json:"words,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time                         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                         `json:"updated_at" gorm:"autoUpdateTime"`
}

// Duration returns the utterance length in seconds
func (u *Utterance) Duration() float64 {
	return u.EndTime - u.StartTime
}

// TableName specifies the table name for GORM
func (Utterance) TableName() string {
	return "utterances"
}
