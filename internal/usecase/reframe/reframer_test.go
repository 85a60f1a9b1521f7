package reframe

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/pkg/ffmpeg"
)

// captureRunner records every ffmpeg invocation instead of executing it
type captureRunner struct {
	calls [][]string
}

func (c *captureRunner) Run(ctx context.Context, args ...string) error {
	c.calls = append(c.calls, args)
	return nil
}

func (c *captureRunner) Probe(ctx context.Context, path string) (*ffmpeg.ProbeResult, error) {
	return &ffmpeg.ProbeResult{Duration: 600, Width: 1920, Height: 1080, HasVideo: true, HasAudio: true}, nil
}

func (c *captureRunner) last() string {
	if len(c.calls) == 0 {
		return ""
	}
	return strings.Join(c.calls[len(c.calls)-1], " ")
}

func testClip() *entities.ClipCandidate {
	return &entities.ClipCandidate{
		ID:        uuid.New(),
		EpisodeID: "EP001",
		StartTime: 30,
		EndTime:   75,
	}
}

func talkingUtterances() []entities.Utterance {
	return []entities.Utterance{
		{Speaker: "A", Text: "one", StartTime: 30, EndTime: 40},
		{Speaker: "B", Text: "two", StartTime: 41, EndTime: 55},
		{Speaker: "A", Text: "three", StartTime: 56, EndTime: 74},
	}
}

func TestRenderCenterBuildsCropAndScale(t *testing.T) {
	runner := &captureRunner{}
	r := NewReframer(runner, nil, nil)

	err := r.Render(context.Background(), "ep.mp4", "out.mp4", testClip(),
		entities.ReframeModeCenter, nil, "")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	cmd := runner.last()
	if !strings.Contains(cmd, "crop=ih*9/16:ih") {
		t.Fatalf("center mode missing vertical crop: %s", cmd)
	}
	if !strings.Contains(cmd, "scale=1080:1920") {
		t.Fatalf("center mode missing scale: %s", cmd)
	}
	if !strings.Contains(cmd, "-ss 30.000") || !strings.Contains(cmd, "-t 45.000") {
		t.Fatalf("clip range not applied: %s", cmd)
	}
}

func TestRenderOriginalCopiesStreams(t *testing.T) {
	runner := &captureRunner{}
	r := NewReframer(runner, nil, nil)

	if err := r.Render(context.Background(), "ep.mp4", "out.mp4", testClip(),
		entities.ReframeModeOriginal, nil, ""); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(runner.last(), "-c copy") {
		t.Fatalf("original mode must stream-copy: %s", runner.last())
	}
}

func TestRenderSplitStacksHalves(t *testing.T) {
	runner := &captureRunner{}
	r := NewReframer(runner, nil, nil)

	if err := r.Render(context.Background(), "ep.mp4", "out.mp4", testClip(),
		entities.ReframeModeSplit, nil, ""); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	cmd := runner.last()
	if !strings.Contains(cmd, "vstack=inputs=2") {
		t.Fatalf("split mode missing vstack: %s", cmd)
	}
}

func TestRenderDynamicUsesSendcmd(t *testing.T) {
	runner := &captureRunner{}
	r := NewReframer(runner, nil, nil)

	err := r.Render(context.Background(), "ep.mp4", "out.mp4", testClip(),
		entities.ReframeModeDynamic, talkingUtterances(), "")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(runner.last(), "sendcmd=") {
		t.Fatalf("dynamic mode missing sendcmd filter: %s", runner.last())
	}
}

func TestRenderDynamicFallsBackToCenterOnTrackingLost(t *testing.T) {
	runner := &captureRunner{}
	r := NewReframer(runner, nil, nil)

	// A single utterance gives fewer than two keyframes, so tracking is
	// declared lost and the render must still succeed.
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "solo", StartTime: 30, EndTime: 74},
	}
	err := r.Render(context.Background(), "ep.mp4", "out.mp4", testClip(),
		entities.ReframeModeDynamic, utterances, "")
	if err != nil {
		t.Fatalf("tracking loss must not fail the clip: %v", err)
	}
	cmd := runner.last()
	if strings.Contains(cmd, "sendcmd=") {
		t.Fatalf("fallback render must not animate the crop: %s", cmd)
	}
	if !strings.Contains(cmd, "crop=ih*9/16:ih") {
		t.Fatalf("fallback must be the static center crop: %s", cmd)
	}
}

func TestTrackerDetectsLongSilence(t *testing.T) {
	clip := testClip()
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "start", StartTime: 30, EndTime: 33},
		// 15s of dead air, beyond the tracking gap limit
		{Speaker: "B", Text: "end", StartTime: 48, EndTime: 74},
	}
	_, err := NewSpeakerTracker().Track(context.Background(), "ep.mp4", clip, utterances)
	if err != entities.ErrTrackingLost {
		t.Fatalf("expected ErrTrackingLost, got %v", err)
	}
}

func TestSmoothClampsVelocity(t *testing.T) {
	frames := smooth([]Keyframe{
		{Time: 0, CenterX: 0.33},
		{Time: 0.5, CenterX: 0.67},
	})
	// 0.34 jump over 0.5s exceeds the 0.25/s bound
	maxAllowed := 0.33 + maxStepPerSecond*0.5
	if frames[1].CenterX > maxAllowed+1e-9 {
		t.Fatalf("velocity not clamped: %.3f > %.3f", frames[1].CenterX, maxAllowed)
	}
}
