package entities

import (
	"fmt"
	"time"
)

// EpisodeStatus represents the processing lifecycle of an episode
type EpisodeStatus string

const (
	EpisodeStatusUnprocessed EpisodeStatus = "unprocessed" // No clip job has run yet
	EpisodeStatusProcessing  EpisodeStatus = "processing"  // A clip job is active
	EpisodeStatusProcessed   EpisodeStatus = "processed"   // At least one job completed
	EpisodeStatusFailed      EpisodeStatus = "failed"      // Last job failed
)

// Episode represents a single podcast episode known to the service
type Episode struct {
	ID              string        `json:"id" gorm:"type:varchar(50);primary_key"`
	EpisodeNumber   int           `json:"episode_number" gorm:"index"`
	Title           string        `json:"title" gorm:"type:text;not null"`
	GuestName       string        `json:"guest_name,omitempty" gorm:"type:varchar(255)"`
	MediaPath       string        `json:"media_path,omitempty" gorm:"type:text"`
	DurationSeconds float64       `json:"duration_seconds" gorm:"default:0"`
	HasVideo        bool          `json:"has_video" gorm:"default:false"`
	HasTranscript   bool          `json:"has_transcript" gorm:"default:false"`
	Status          EpisodeStatus `json:"status" gorm:"type:varchar(20);not null;default:'unprocessed'"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewEpisode creates an episode with the canonical EP-prefixed identifier
func NewEpisode(number int, title string) *Episode {
	return &Episode{
		ID:            EpisodeID(number),
		EpisodeNumber: number,
		Title:         title,
		Status:        EpisodeStatusUnprocessed,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// EpisodeID formats an episode number as the canonical identifier, e.g. EP042
func EpisodeID(number int) string {
	return fmt.Sprintf("EP%03d", number)
}

// MarkProcessing flags the episode while a clip job is active
func (e *Episode) MarkProcessing() {
	e.Status = EpisodeStatusProcessing
	e.UpdatedAt = time.Now()
}

// MarkProcessed records a successful job run
func (e *Episode) MarkProcessed() {
	e.Status = EpisodeStatusProcessed
	e.UpdatedAt = time.Now()
}

// MarkFailed records a failed job run
func (e *Episode) MarkFailed() {
	e.Status = EpisodeStatusFailed
	e.UpdatedAt = time.Now()
}

// TableName specifies the table name for GORM
func (Episode) TableName() string {
	return "episodes"
}
