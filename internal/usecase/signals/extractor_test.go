package signals

import (
	"reflect"
	"testing"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

func sampleTranscript() []entities.Utterance {
	return []entities.Utterance{
		{Speaker: "A", Text: "So let me tell you the craziest thing that happened to us.", StartTime: 0, EndTime: 5},
		{Speaker: "B", Text: "Okay, I'm listening.", StartTime: 5.2, EndTime: 6.5},
		{Speaker: "A", Text: "One day we lost every customer in a single morning. It was devastating.", StartTime: 8.5, EndTime: 14},
		{Speaker: "B", Text: "What did you do?", StartTime: 14.2, EndTime: 15.5},
		{Speaker: "A", Text: "Honestly I think everyone is wrong about failure. That's the lesson.", StartTime: 16, EndTime: 21},
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	utterances := sampleTranscript()
	e := NewExtractor(DefaultConfig(), nil)

	first := e.Extract("EP001", utterances)
	second := e.Extract("EP001", utterances)

	if len(first) == 0 {
		t.Fatal("expected signals from sample transcript")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input produced different signal sets")
	}
}

func TestCategoryTogglesAreIndependent(t *testing.T) {
	utterances := sampleTranscript()

	full := NewExtractor(DefaultConfig(), nil).Extract("EP001", utterances)
	noAudio := NewExtractor(Config{EnableText: true, EnableStructural: true}, nil).Extract("EP001", utterances)

	for _, s := range noAudio {
		if s.Category == entities.SignalCategoryAudio {
			t.Fatalf("audio signal emitted while audio disabled: %+v", s)
		}
	}

	// Text and structural signals must be unchanged by the audio toggle
	filter := func(in []entities.Signal) []entities.Signal {
		var out []entities.Signal
		for _, s := range in {
			if s.Category != entities.SignalCategoryAudio {
				out = append(out, s)
			}
		}
		return out
	}
	if !reflect.DeepEqual(filter(full), noAudio) {
		t.Fatal("disabling audio changed signals from other categories")
	}
}

func TestDramaticPauseDetected(t *testing.T) {
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "And then everything went quiet.", StartTime: 0, EndTime: 3},
		{Speaker: "A", Text: "Nothing was left.", StartTime: 5.5, EndTime: 7},
	}
	out := NewExtractor(Config{EnableAudio: true}, nil).Extract("EP001", utterances)

	found := false
	for _, s := range out {
		if s.Kind == entities.SignalKindDramaticPause {
			found = true
			if s.StartTime != 3 || s.EndTime != 5.5 {
				t.Fatalf("pause signal has wrong range: %.1f-%.1f", s.StartTime, s.EndTime)
			}
		}
	}
	if !found {
		t.Fatal("expected a dramatic pause signal for a 2.5s gap")
	}
}

func TestQuotableStatementDetected(t *testing.T) {
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "Failure is an incredible teacher.", StartTime: 0, EndTime: 3},
	}
	out := NewExtractor(Config{EnableText: true}, nil).Extract("EP001", utterances)

	for _, s := range out {
		if s.Kind == entities.SignalKindQuotable {
			return
		}
	}
	t.Fatal("expected a quotable signal")
}

func TestEmptyTranscriptYieldsNoSignals(t *testing.T) {
	out := NewExtractor(DefaultConfig(), nil).Extract("EP001", nil)
	if len(out) != 0 {
		t.Fatalf("expected no signals, got %d", len(out))
	}
}
