package job

import (
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// SubmitJobRequest is the body of POST /episodes/:id/process. Every
// field is optional; unset fields take the service defaults.
type SubmitJobRequest struct {
	MinScore    *float64 `json:"min_score,omitempty" validate:"omitempty,min=0,max=100"`
	MinDuration *float64 `json:"min_duration,omitempty" validate:"omitempty,gt=0"`
	MaxDuration *float64 `json:"max_duration,omitempty" validate:"omitempty,gt=0"`
	TopN        *int     `json:"top_n,omitempty" validate:"omitempty,min=1,max=50"`

	AvoidIntroSec *float64 `json:"avoid_intro_sec,omitempty" validate:"omitempty,min=0"`
	AvoidOutroSec *float64 `json:"avoid_outro_sec,omitempty" validate:"omitempty,min=0"`

	SubtitleStyle string `json:"subtitle_style,omitempty" validate:"omitempty,oneof=hormozi mrbeast minimal podcast splitscreen"`
	Animation     string `json:"animation,omitempty" validate:"omitempty,oneof=highlight karaoke cumulative none"`
	ReframeMode   string `json:"reframe_mode,omitempty" validate:"omitempty,oneof=split reframe-dynamic reframe-center original"`

	TranscriptionSource string `json:"transcription_source,omitempty" validate:"omitempty,oneof=local_whisper assemblyai supabase_custom"`

	// Per-request credentials for the external sources. Held in memory
	// for the run only, never persisted or echoed back.
	AssemblyAIAPIKey string `json:"assemblyai_api_key,omitempty"`
	SupabaseURL      string `json:"supabase_url,omitempty"`
	SupabaseKey      string `json:"supabase_key,omitempty"`
}

// ToConfig converts the request into the job configuration
func (r *SubmitJobRequest) ToConfig() entities.JobConfig {
	cfg := entities.JobConfig{
		SubtitleStyle:    r.SubtitleStyle,
		Animation:        r.Animation,
		ReframeMode:      entities.ReframeMode(r.ReframeMode),
		Source:           entities.TranscriptionSource(r.TranscriptionSource),
		AssemblyAIAPIKey: r.AssemblyAIAPIKey,
		SupabaseURL:      r.SupabaseURL,
		SupabaseKey:      r.SupabaseKey,
	}
	// An explicit zero floor accepts every ranked clip; only an absent
	// field takes the default
	cfg.MinScore = entities.DefaultMinScore
	if r.MinScore != nil {
		cfg.MinScore = *r.MinScore
	}
	if r.MinDuration != nil {
		cfg.MinDuration = *r.MinDuration
	}
	if r.MaxDuration != nil {
		cfg.MaxDuration = *r.MaxDuration
	}
	if r.TopN != nil {
		cfg.TopN = *r.TopN
	}
	if r.AvoidIntroSec != nil {
		cfg.AvoidIntroSec = *r.AvoidIntroSec
	}
	if r.AvoidOutroSec != nil {
		cfg.AvoidOutroSec = *r.AvoidOutroSec
	}
	return cfg
}
