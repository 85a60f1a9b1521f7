package entities

import (
	"time"

	"github.com/google/uuid"
)

// JobStage is the pipeline stage a clip job is currently in. Stages only
// ever advance; a failed or cancelled job keeps the stage it died in.
type JobStage string

const (
	JobStageQueued      JobStage = "queued"
	JobStageTranscribe  JobStage = "transcribing"
	JobStageSignals     JobStage = "extracting_signals"
	JobStageCurate      JobStage = "curating"
	JobStageRender      JobStage = "rendering" // reframing + subtitling per clip
	JobStageDone        JobStage = "done"
)

// JobStatus is the job's terminal disposition
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// TranscriptionSource selects the transcript backend for a job
type TranscriptionSource string

const (
	SourceLocalWhisper   TranscriptionSource = "local_whisper"
	SourceAssemblyAI     TranscriptionSource = "assemblyai"
	SourceSupabaseCustom TranscriptionSource = "supabase_custom"
)

// ReframeMode selects the vertical conversion strategy
type ReframeMode string

const (
	ReframeModeSplit    ReframeMode = "split"
	ReframeModeDynamic  ReframeMode = "reframe-dynamic"
	ReframeModeCenter   ReframeMode = "reframe-center"
	ReframeModeOriginal ReframeMode = "original"
)

// JobConfig is the per-job configuration captured at submission time.
// Credential fields are held in memory for the run only; the json:"-"
// tags keep them out of the persisted jsonb column and API responses.
type JobConfig struct {
	MinScore    float64 `json:"min_score"`
	MinDuration float64 `json:"min_duration"`
	MaxDuration float64 `json:"max_duration"`
	TopN        int     `json:"top_n"`

	// Avoid zones: candidates overlapping the first AvoidIntroSec or the
	// last AvoidOutroSec seconds of the episode are rejected by the
	// critic. Zero disables the zone.
	AvoidIntroSec float64 `json:"avoid_intro_sec"`
	AvoidOutroSec float64 `json:"avoid_outro_sec"`

	SubtitleStyle string      `json:"subtitle_style"`
	Animation     string      `json:"animation"`
	ReframeMode   ReframeMode `json:"reframe_mode"`

	Source TranscriptionSource `json:"transcription_source"`

	AssemblyAIAPIKey string `json:"-"`
	SupabaseURL      string `json:"-"`
	SupabaseKey      string `json:"-"`
}

// DefaultMinScore is the selection floor applied when a submission
// leaves min_score unset
const DefaultMinScore = 70

// ApplyDefaults fills unset fields with the service defaults. MinScore
// is left alone: zero is a valid floor meaning every ranked clip
// qualifies, so the API layer fills in DefaultMinScore only when the
// field is absent from the request.
func (c *JobConfig) ApplyDefaults() {
	if c.MinDuration == 0 {
		c.MinDuration = 30
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = 90
	}
	if c.TopN == 0 {
		c.TopN = 10
	}
	if c.SubtitleStyle == "" {
		c.SubtitleStyle = "hormozi"
	}
	if c.Animation == "" {
		c.Animation = "highlight"
	}
	if c.ReframeMode == "" {
		c.ReframeMode = ReframeModeCenter
	}
	if c.Source == "" {
		c.Source = SourceLocalWhisper
	}
}

// ClipJob is one asynchronous processing run over an episode
type ClipJob struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	EpisodeID string    `json:"episode_id" gorm:"type:varchar(50);not null;index"`

	Stage  JobStage  `json:"stage" gorm:"type:varchar(30);not null;default:'queued'"`
	Status JobStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'queued'"`

	Config JobConfig `json:"config" gorm:"serializer:json;type:jsonb"`

	Progress  int     `json:"progress" gorm:"default:0"` // 0..100
	Message   string  `json:"message,omitempty" gorm:"type:text"`
	LastError *string `json:"last_error,omitempty" gorm:"type:text"`
	FailStage *string `json:"fail_stage,omitempty" gorm:"type:varchar(30)"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewClipJob creates a queued job for an episode
func NewClipJob(episodeID string, cfg JobConfig) *ClipJob {
	cfg.ApplyDefaults()
	return &ClipJob{
		ID:        uuid.New(),
		EpisodeID: episodeID,
		Stage:     JobStageQueued,
		Status:    JobStatusQueued,
		Config:    cfg,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsActive reports whether the job still occupies its episode
func (j *ClipJob) IsActive() bool {
	return j.Status == JobStatusQueued || j.Status == JobStatusRunning
}

// IsTerminal reports whether the job reached an absorbing state
func (j *ClipJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// EnterStage advances the job into a pipeline stage
func (j *ClipJob) EnterStage(stage JobStage, progress int, message string) {
	j.Stage = stage
	j.Status = JobStatusRunning
	j.Progress = progress
	j.Message = message
	if j.StartedAt == nil {
		now := time.Now()
		j.StartedAt = &now
	}
	j.UpdatedAt = time.Now()
}

// MarkCompleted finishes the job successfully
func (j *ClipJob) MarkCompleted(message string) {
	j.Stage = JobStageDone
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.Message = message
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed records the stage and reason the job died in
func (j *ClipJob) MarkFailed(stage JobStage, reason string) {
	j.Stage = stage
	j.Status = JobStatusFailed
	j.Message = "failed during " + string(stage)
	j.LastError = &reason
	s := string(stage)
	j.FailStage = &s
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkCancelled finishes the job after a cancel request took effect
func (j *ClipJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	j.Message = "cancelled"
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (ClipJob) TableName() string {
	return "clip_jobs"
}
