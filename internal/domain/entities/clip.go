package entities

import (
	"time"

	"github.com/google/uuid"
)

// ViralityScore breaks a candidate's score into ten dimensions.
// Text dimensions are worth up to 40 points combined, audio and
// structural up to 30 each; each dimension is 0..10.
type ViralityScore struct {
	// Text (max 40)
	HookStrength float64 `json:"hook_strength"`
	Quotability  float64 `json:"quotability"`
	Storytelling float64 `json:"storytelling"`
	Controversy  float64 `json:"controversy"`

	// Audio (max 30)
	EnergyLevel  float64 `json:"energy_level"`
	Pacing       float64 `json:"pacing"`
	EmotionalArc float64 `json:"emotional_arc"`

	// Structural (max 30)
	StandaloneClarity   float64 `json:"standalone_clarity"`
	SegmentCompleteness float64 `json:"segment_completeness"`
	OptimalDuration     float64 `json:"optimal_duration"`
}

// Total aggregates the ten dimensions into the 0..100 virality score
func (v ViralityScore) Total() float64 {
	return v.HookStrength + v.Quotability + v.Storytelling + v.Controversy +
		v.EnergyLevel + v.Pacing + v.EmotionalArc +
		v.StandaloneClarity + v.SegmentCompleteness + v.OptimalDuration
}

// RejectionReason is the code attached to every candidate the critic drops
type RejectionReason string

const (
	RejectionIncompleteThought RejectionReason = "incomplete_thought"
	RejectionWeakHook          RejectionReason = "weak_hook"
	RejectionTooShort          RejectionReason = "too_short"
	RejectionTooLong           RejectionReason = "too_long"
	RejectionContextDependent  RejectionReason = "context_dependent"
	RejectionAvoidZone         RejectionReason = "avoid_zone"
	RejectionLowQuality        RejectionReason = "low_quality"
)

// ClipStatus tracks a candidate through curation and review
type ClipStatus string

const (
	ClipStatusCandidate     ClipStatus = "candidate"      // Produced by the finder
	ClipStatusApproved      ClipStatus = "approved"       // Passed the critic
	ClipStatusRanked        ClipStatus = "ranked"         // Scored, final
	ClipStatusPendingReview ClipStatus = "pending_review" // Scored well but duration out of band
	ClipStatusRejected      ClipStatus = "rejected"
)

// ClipCandidate is a proposed clip. The time range is relative to the
// episode start; once ranked the candidate is immutable.
type ClipCandidate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID     uuid.UUID `json:"job_id" gorm:"type:uuid;not null;index"`
	EpisodeID string    `json:"episode_id" gorm:"type:varchar(50);not null;index"`

	StartTime float64 `json:"start_time" gorm:"not null"`
	EndTime   float64 `json:"end_time" gorm:"not null"`

	Title             string   `json:"title,omitempty" gorm:"type:text"`
	Summary           string   `json:"summary,omitempty" gorm:"type:text"`
	Category          string   `json:"category,omitempty" gorm:"type:varchar(100)"`
	Reason            string   `json:"reason,omitempty" gorm:"type:text"`
	SignalMatch       string   `json:"signal_match,omitempty" gorm:"type:text"`
	SuggestedHashtags []string `json:"suggested_hashtags,omitempty" gorm:"serializer:json;type:jsonb"`

	Score           float64         `json:"score" gorm:"default:0"`
	ScoreBreakdown  ViralityScore   `json:"score_breakdown" gorm:"serializer:json;type:jsonb"`
	Status          ClipStatus      `json:"status" gorm:"type:varchar(20);not null;default:'candidate'"`
	RejectionReason RejectionReason `json:"rejection_reason,omitempty" gorm:"type:varchar(50)"`

	RenderedPath string `json:"rendered_path,omitempty" gorm:"type:text"`
	SubtitlePath string `json:"subtitle_path,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewClipCandidate creates a finder-stage candidate for a job
func NewClipCandidate(jobID uuid.UUID, episodeID string, start, end float64) *ClipCandidate {
	return &ClipCandidate{
		ID:        uuid.New(),
		JobID:     jobID,
		EpisodeID: episodeID,
		StartTime: start,
		EndTime:   end,
		Status:    ClipStatusCandidate,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Duration returns the candidate length in seconds
func (c *ClipCandidate) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Overlap returns the overlapping seconds between two candidates
func (c *ClipCandidate) Overlap(other *ClipCandidate) float64 {
	start := c.StartTime
	if other.StartTime > start {
		start = other.StartTime
	}
	end := c.EndTime
	if other.EndTime < end {
		end = other.EndTime
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Approve marks the candidate as passed by the critic
func (c *ClipCandidate) Approve(reason string) {
	c.Status = ClipStatusApproved
	c.Reason = reason
	c.UpdatedAt = time.Now()
}

// Reject marks the candidate as dropped with a reason code
func (c *ClipCandidate) Reject(reason RejectionReason) {
	c.Status = ClipStatusRejected
	c.RejectionReason = reason
	c.UpdatedAt = time.Now()
}

// Finalize records the ranker's score and freezes the candidate
func (c *ClipCandidate) Finalize(breakdown ViralityScore) {
	c.ScoreBreakdown = breakdown
	c.Score = breakdown.Total()
	c.Status = ClipStatusRanked
	c.UpdatedAt = time.Now()
}

// MarkPendingReview flags a well-scored candidate whose duration falls
// outside the configured band but inside the hard limits
func (c *ClipCandidate) MarkPendingReview() {
	c.Status = ClipStatusPendingReview
	c.UpdatedAt = time.Now()
}

// TableName specifies the table name for GORM
func (ClipCandidate) TableName() string {
	return "clip_candidates"
}
