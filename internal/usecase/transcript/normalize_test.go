package transcript

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

func TestNormalizeSortsAndIndexes(t *testing.T) {
	raw := []entities.Utterance{
		{Speaker: "B", Text: "second", StartTime: 10, EndTime: 12},
		{Speaker: "A", Text: "first", StartTime: 1, EndTime: 4},
		{Speaker: "A", Text: "   ", StartTime: 5, EndTime: 6}, // dropped
	}

	got, err := Normalize("EP001", raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(got))
	}
	if got[0].Text != "first" || got[1].Text != "second" {
		t.Fatalf("utterances not sorted by start time: %q, %q", got[0].Text, got[1].Text)
	}
	for i, u := range got {
		if u.UtteranceIndex != i {
			t.Fatalf("utterance %d has index %d", i, u.UtteranceIndex)
		}
		if u.EpisodeID != "EP001" {
			t.Fatalf("utterance %d missing episode id", i)
		}
	}
}

func TestNormalizeRejectsEndBeforeStart(t *testing.T) {
	raw := []entities.Utterance{
		{Speaker: "A", Text: "broken", StartTime: 10, EndTime: 5},
	}
	_, err := Normalize("EP002", raw)
	if err == nil {
		t.Fatal("expected error for end < start")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_MALFORMED_TRANSCRIPT {
		t.Fatalf("expected MALFORMED_TRANSCRIPT, got %s", appErr.Code)
	}
}

func TestNormalizeRejectsEmptyTranscript(t *testing.T) {
	_, err := Normalize("EP003", []entities.Utterance{{Speaker: "A", Text: "  "}})
	if err == nil {
		t.Fatal("expected error for transcript with no usable utterances")
	}
}

func TestNormalizeRejectsNegativeStart(t *testing.T) {
	raw := []entities.Utterance{
		{Speaker: "A", Text: "ok", StartTime: -1, EndTime: 2},
	}
	if _, err := Normalize("EP004", raw); err == nil {
		t.Fatal("expected error for negative start time")
	}
}

func TestFullTextFormat(t *testing.T) {
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "hello", StartTime: 65, EndTime: 67},
	}
	text := FullText(utterances)
	if !strings.Contains(text, "[01:05 A]: hello") {
		t.Fatalf("unexpected transcript format: %q", text)
	}
}

func TestValidateSourceConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     entities.JobConfig
		wantErr bool
	}{
		{"whisper needs nothing", entities.JobConfig{Source: entities.SourceLocalWhisper}, false},
		{"assemblyai without key", entities.JobConfig{Source: entities.SourceAssemblyAI}, true},
		{"assemblyai with key", entities.JobConfig{Source: entities.SourceAssemblyAI, AssemblyAIAPIKey: "k"}, false},
		{"supabase missing url", entities.JobConfig{Source: entities.SourceSupabaseCustom, SupabaseKey: "k"}, true},
		{"supabase missing key", entities.JobConfig{Source: entities.SourceSupabaseCustom, SupabaseURL: "u"}, true},
		{"supabase complete", entities.JobConfig{Source: entities.SourceSupabaseCustom, SupabaseURL: "u", SupabaseKey: "k"}, false},
		{"unknown source", entities.JobConfig{Source: "carrier_pigeon"}, true},
	}
	for _, tc := range cases {
		err := ValidateSourceConfig(tc.cfg)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}
