package entities

// SignalCategory groups extracted signals by the analyzer that produced them
type SignalCategory string

const (
	SignalCategoryText       SignalCategory = "text"
	SignalCategoryAudio      SignalCategory = "audio"
	SignalCategoryStructural SignalCategory = "structural"
)

// SignalKind names the concrete pattern a signal describes
type SignalKind string

const (
	// Text signals
	SignalKindHook         SignalKind = "hook"
	SignalKindStory        SignalKind = "story"
	SignalKindControversy  SignalKind = "controversy"
	SignalKindQuestion     SignalKind = "question"
	SignalKindEmotion      SignalKind = "emotion"
	SignalKindQuotable     SignalKind = "quotable"

	// Audio signals
	SignalKindPacing        SignalKind = "pacing"
	SignalKindDramaticPause SignalKind = "dramatic_pause"
	SignalKindEnergyPeak    SignalKind = "energy_peak"
	SignalKindEmotionalArc  SignalKind = "emotional_arc"

	// Structural signals
	SignalKindClearStart       SignalKind = "clear_start"
	SignalKindClearEnd         SignalKind = "clear_end"
	SignalKindSpeakerDynamics  SignalKind = "speaker_dynamics"
	SignalKindSelfContained    SignalKind = "self_contained"
	SignalKindDurationFit      SignalKind = "duration_fit"
)

// Signal is one extracted hint that a window of the episode may be
// clip-worthy. Signals are derived data: recomputed per run and never
// treated as a source of truth.
type Signal struct {
	EpisodeID string         `json:"episode_id"`
	Category  SignalCategory `json:"category"`
	Kind      SignalKind     `json:"kind"`
	StartTime float64        `json:"start_time"`
	EndTime   float64        `json:"end_time"`
	Score     float64        `json:"score"` // 0..10 within the category's scale
	Detail    string         `json:"detail,omitempty"`
}

// Duration returns the signal window length in seconds
func (s *Signal) Duration() float64 {
	return s.EndTime - s.StartTime
}
