// Package reframe converts landscape episode video into vertical clips.
package reframe

import (
	"context"
	"sort"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Keyframe is one point of the subject trajectory. CenterX is the
// horizontal subject center normalized to 0..1 of the frame width.
type Keyframe struct {
	Time    float64
	CenterX float64
}

// Tracker produces a subject-center trajectory for a clip. Returning
// entities.ErrTrackingLost tells the reframer to fall back to a static
// center crop.
type Tracker interface {
	Track(ctx context.Context, mediaPath string, clip *entities.ClipCandidate, utterances []entities.Utterance) ([]Keyframe, error)
}

const (
	// trackerMaxGapSeconds: longer silent stretches mean the trajectory
	// can no longer be trusted
	trackerMaxGapSeconds = 10.0
	// Horizontal anchors for a two-person podcast framing
	leftAnchor   = 0.33
	rightAnchor  = 0.67
	centerAnchor = 0.5
)

// SpeakerTracker derives the trajectory from diarization: the crop
// follows whoever is talking, assuming the host sits frame-left and the
// guest frame-right.
type SpeakerTracker struct{}

// NewSpeakerTracker creates the default tracker
func NewSpeakerTracker() *SpeakerTracker {
	return &SpeakerTracker{}
}

// Track builds keyframes from speaker turns inside the clip range
func (t *SpeakerTracker) Track(ctx context.Context, mediaPath string, clip *entities.ClipCandidate, utterances []entities.Utterance) ([]Keyframe, error) {
	speakers := map[string]float64{}
	order := []float64{leftAnchor, rightAnchor, centerAnchor}

	var inClip []entities.Utterance
	for _, u := range utterances {
		if u.EndTime <= clip.StartTime || u.StartTime >= clip.EndTime {
			continue
		}
		inClip = append(inClip, u)
	}
	sort.SliceStable(inClip, func(i, j int) bool { return inClip[i].StartTime < inClip[j].StartTime })

	var frames []Keyframe
	prevEnd := clip.StartTime
	for _, u := range inClip {
		if u.StartTime-prevEnd > trackerMaxGapSeconds {
			return nil, entities.ErrTrackingLost
		}
		anchor, ok := speakers[u.Speaker]
		if !ok {
			idx := len(speakers)
			if idx >= len(order) {
				idx = len(order) - 1
			}
			anchor = order[idx]
			speakers[u.Speaker] = anchor
		}

		start := u.StartTime
		if start < clip.StartTime {
			start = clip.StartTime
		}
		frames = append(frames, Keyframe{Time: start - clip.StartTime, CenterX: anchor})
		if u.EndTime > prevEnd {
			prevEnd = u.EndTime
		}
	}

	if clip.EndTime-prevEnd > trackerMaxGapSeconds {
		return nil, entities.ErrTrackingLost
	}
	if len(frames) < 2 {
		return nil, entities.ErrTrackingLost
	}

	return smooth(frames), nil
}

// maxStepPerSecond bounds crop velocity so the follow never jitters or
// whips across the frame
const maxStepPerSecond = 0.25

// smooth clamps per-keyframe movement to the velocity bound
func smooth(frames []Keyframe) []Keyframe {
	out := make([]Keyframe, len(frames))
	copy(out, frames)
	for i := 1; i < len(out); i++ {
		dt := out[i].Time - out[i-1].Time
		if dt <= 0 {
			out[i].CenterX = out[i-1].CenterX
			continue
		}
		maxStep := maxStepPerSecond * dt
		delta := out[i].CenterX - out[i-1].CenterX
		if delta > maxStep {
			out[i].CenterX = out[i-1].CenterX + maxStep
		} else if delta < -maxStep {
			out[i].CenterX = out[i-1].CenterX - maxStep
		}
	}
	return out
}
