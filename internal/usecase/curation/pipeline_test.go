package curation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// scriptedChatter answers each agent by keying off its system prompt
type scriptedChatter struct {
	finder string
	critic string
	ranker string

	failCritic bool
	calls      int
}

func (s *scriptedChatter) Chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	s.calls++
	switch {
	case strings.Contains(system, "scouting"):
		return s.finder, nil
	case strings.Contains(system, "critic"):
		if s.failCritic {
			return "", errors.New("backend exploded")
		}
		return s.critic, nil
	case strings.Contains(system, "virality"):
		return s.ranker, nil
	}
	return "", errors.New("unexpected prompt")
}

func testEpisode() *entities.Episode {
	return &entities.Episode{ID: "EP001", Title: "test", DurationSeconds: 600}
}

func testUtterances() []entities.Utterance {
	return []entities.Utterance{
		{EpisodeID: "EP001", Speaker: "A", Text: "Let me tell you the craziest thing.", StartTime: 10, EndTime: 15},
		{EpisodeID: "EP001", Speaker: "B", Text: "Go on.", StartTime: 15, EndTime: 16},
		{EpisodeID: "EP001", Speaker: "A", Text: "We lost everything in one day.", StartTime: 100, EndTime: 110},
		{EpisodeID: "EP001", Speaker: "A", Text: "That's the lesson.", StartTime: 155, EndTime: 160},
	}
}

const scoredNinety = `"virality_score":{"hook_strength":9,"quotability":9,"storytelling":9,"controversy":9,
"energy_level":9,"pacing":9,"emotional_arc":9,"standalone_clarity":9,"segment_completeness":9,"optimal_duration":9}`

func TestPipelineHappyPath(t *testing.T) {
	chat := &scriptedChatter{
		finder: `{"candidates":[
			{"start_time":10,"end_time":55,"reason":"strong hook","signal_match":"hook"},
			{"start_time":100,"end_time":160,"reason":"full story","signal_match":"story"},
			{"start_time":300,"end_time":305,"reason":"tiny","signal_match":""}]}`,
		critic: `{"approved":[
			{"start_time":10,"end_time":55,"approval_reason":"lands on its own"},
			{"start_time":100,"end_time":160,"approval_reason":"complete arc"}],
			"rejected":[]}`,
		ranker: `{"ranked_clips":[
			{"start_time":10,"end_time":55,"title":"The Craziest Thing","summary":"s","category":"business",` + scoredNinety + `,"suggested_hashtags":["#wild"]},
			{"start_time":100,"end_time":160,"title":"Losing It All","summary":"s","category":"business",
			 "virality_score":{"hook_strength":4,"quotability":4,"storytelling":4,"controversy":4,
			 "energy_level":4,"pacing":4,"emotional_arc":4,"standalone_clarity":4,"segment_completeness":4,"optimal_duration":4},
			 "suggested_hashtags":[]}]}`,
	}

	p := NewPipeline(chat, Options{MaxRetries: 1, ChunkChars: 6000, ChunkOverlapSec: 120}, nil)
	cfg := entities.JobConfig{MinScore: entities.DefaultMinScore}
	cfg.ApplyDefaults()

	result, err := p.Run(context.Background(), uuid.New(), testEpisode(), testUtterances(), nil, cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Selected) != 1 {
		t.Fatalf("expected 1 clip above the 70 floor, got %d", len(result.Selected))
	}
	top := result.Selected[0]
	if top.Score != 90 {
		t.Fatalf("expected aggregate 90, got %.0f", top.Score)
	}
	if top.Title != "The Craziest Thing" {
		t.Fatalf("unexpected title %q", top.Title)
	}

	// The 5-second candidate must carry a rejection code, not vanish
	foundShort := false
	for _, c := range result.All {
		if c.StartTime == 300 {
			foundShort = true
			if c.Status != entities.ClipStatusRejected || c.RejectionReason != entities.RejectionTooShort {
				t.Fatalf("short candidate not rejected with too_short: %s/%s", c.Status, c.RejectionReason)
			}
		}
	}
	if !foundShort {
		t.Fatal("short candidate missing from candidate trail")
	}
}

func TestPipelineRejectsAvoidZoneCandidates(t *testing.T) {
	// 600s episode, 60s intro and outro zones. Only the mid-episode cut
	// survives to the agent stages.
	chat := &scriptedChatter{
		finder: `{"candidates":[
			{"start_time":10,"end_time":55,"reason":"inside the intro","signal_match":""},
			{"start_time":100,"end_time":160,"reason":"mid episode","signal_match":""},
			{"start_time":555,"end_time":595,"reason":"runs into the outro","signal_match":""}]}`,
		critic: `{"approved":[
			{"start_time":100,"end_time":160,"approval_reason":"lands on its own"}],"rejected":[]}`,
		ranker: `{"ranked_clips":[
			{"start_time":100,"end_time":160,"title":"Mid","summary":"s","category":"c",` + scoredNinety + `,"suggested_hashtags":[]}]}`,
	}
	p := NewPipeline(chat, Options{MaxRetries: 1, ChunkChars: 6000}, nil)
	cfg := entities.JobConfig{MinScore: entities.DefaultMinScore, AvoidIntroSec: 60, AvoidOutroSec: 60}
	cfg.ApplyDefaults()

	result, err := p.Run(context.Background(), uuid.New(), testEpisode(), testUtterances(), nil, cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Selected) != 1 || result.Selected[0].StartTime != 100 {
		t.Fatalf("expected only the mid-episode clip selected, got %+v", result.Selected)
	}
	zoneRejected := 0
	for _, c := range result.All {
		if c.StartTime == 10 || c.StartTime == 555 {
			if c.Status != entities.ClipStatusRejected || c.RejectionReason != entities.RejectionAvoidZone {
				t.Fatalf("zone candidate at %.0f not rejected with avoid_zone: %s/%s",
					c.StartTime, c.Status, c.RejectionReason)
			}
			zoneRejected++
		}
	}
	if zoneRejected != 2 {
		t.Fatalf("expected 2 avoid-zone rejections, got %d", zoneRejected)
	}
}

func TestPipelineCriticFailureAbortsWithoutPartialResults(t *testing.T) {
	chat := &scriptedChatter{
		finder: `{"candidates":[{"start_time":10,"end_time":55,"reason":"r","signal_match":""}]}`,
		failCritic: true,
	}
	p := NewPipeline(chat, Options{MaxRetries: 1, ChunkChars: 6000}, nil)
	cfg := entities.JobConfig{}
	cfg.ApplyDefaults()

	result, err := p.Run(context.Background(), uuid.New(), testEpisode(), testUtterances(), nil, cfg)
	if err == nil {
		t.Fatal("expected error when critic backend fails")
	}
	if result != nil {
		t.Fatal("failed run must not return partial results")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_CURATION_STAGE_FAILED {
		t.Fatalf("expected CURATION_STAGE_FAILED, got %s", appErr.Code)
	}
	if appErr.Details["stage"] != StageCritiquing {
		t.Fatalf("failure must name the stage, got %q", appErr.Details["stage"])
	}
}

func TestPipelineOutOfBandHighScoreGoesToPendingReview(t *testing.T) {
	// 110s cut: above max_duration 90 but under the 180s hard cap. The
	// second, in-band clip keeps the ranking stage from failing outright.
	chat := &scriptedChatter{
		finder: `{"candidates":[
			{"start_time":10,"end_time":120,"reason":"long","signal_match":""},
			{"start_time":200,"end_time":250,"reason":"tight","signal_match":""}]}`,
		critic: `{"approved":[
			{"start_time":10,"end_time":120,"approval_reason":"a"},
			{"start_time":200,"end_time":250,"approval_reason":"b"}],"rejected":[]}`,
		ranker: `{"ranked_clips":[
			{"start_time":10,"end_time":120,"title":"Long One","summary":"s","category":"c",` + scoredNinety + `,"suggested_hashtags":[]},
			{"start_time":200,"end_time":250,"title":"Tight One","summary":"s","category":"c",` + scoredNinety + `,"suggested_hashtags":[]}]}`,
	}
	p := NewPipeline(chat, Options{MaxRetries: 1, ChunkChars: 6000}, nil)
	cfg := entities.JobConfig{}
	cfg.ApplyDefaults()

	result, err := p.Run(context.Background(), uuid.New(), testEpisode(), testUtterances(), nil, cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var long *entities.ClipCandidate
	for i := range result.All {
		if result.All[i].StartTime == 10 {
			long = &result.All[i]
		}
	}
	if long == nil {
		t.Fatal("long candidate missing")
	}
	if long.Status != entities.ClipStatusPendingReview {
		t.Fatalf("expected pending_review for high-scoring out-of-band clip, got %s", long.Status)
	}
	for _, c := range result.Selected {
		if c.StartTime == 10 {
			t.Fatal("pending review clip must not be in the selected set")
		}
	}
}
