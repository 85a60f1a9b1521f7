package curation

import (
	"testing"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

func TestCheckDuration(t *testing.T) {
	cases := []struct {
		name string
		d    float64
		want durationVerdict
	}{
		{"in band", 45, durationOK},
		{"at min", 30, durationOK},
		{"at max", 90, durationOK},
		{"below band above hard floor", 20, durationOutOfBand},
		{"above band below hard cap", 120, durationOutOfBand},
		{"below hard floor", 10, durationInvalid},
		{"above hard cap", 200, durationInvalid},
	}
	for _, tc := range cases {
		if got := checkDuration(tc.d, 30, 90); got != tc.want {
			t.Fatalf("%s: checkDuration(%.0f) = %d, want %d", tc.name, tc.d, got, tc.want)
		}
	}
}

func TestSanitizeRange(t *testing.T) {
	if _, _, ok := sanitizeRange(10, 5, 100); ok {
		t.Fatal("end before start should be rejected")
	}
	start, end, ok := sanitizeRange(-3, 500, 100)
	if !ok || start != 0 || end != 100 {
		t.Fatalf("expected clamp to 0..100, got %.1f..%.1f ok=%v", start, end, ok)
	}
}

func ranked(start, end, score float64) entities.ClipCandidate {
	c := entities.ClipCandidate{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   end,
		Score:     score,
		Status:    entities.ClipStatusRanked,
	}
	return c
}

func TestSelectTopOrderingAndTruncation(t *testing.T) {
	candidates := []entities.ClipCandidate{
		ranked(100, 150, 80),
		ranked(10, 60, 92),
		ranked(200, 250, 92), // ties with the one starting at 10
		ranked(300, 350, 65), // below floor
		ranked(400, 450, 75),
	}

	got := selectTop(candidates, 70, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(got))
	}
	if got[0].StartTime != 10 {
		t.Fatalf("tie at 92 must break to earliest start, got start %.0f", got[0].StartTime)
	}
	if got[1].StartTime != 200 || got[2].StartTime != 100 {
		t.Fatalf("unexpected ordering: %.0f, %.0f", got[1].StartTime, got[2].StartTime)
	}
	for _, c := range got {
		if c.Score < 70 {
			t.Fatalf("candidate below min_score selected: %.0f", c.Score)
		}
	}
}

func TestSelectTopIgnoresUnranked(t *testing.T) {
	pending := ranked(10, 60, 95)
	pending.Status = entities.ClipStatusPendingReview
	got := selectTop([]entities.ClipCandidate{pending}, 70, 10)
	if len(got) != 0 {
		t.Fatalf("pending review clip must not be selected, got %d", len(got))
	}
}

func TestDedupKeepsHigherScore(t *testing.T) {
	a := ranked(10, 70, 90)
	b := ranked(20, 75, 60) // overlaps a by 50s of its 55s span
	c := ranked(200, 260, 50)

	got := dedup([]entities.ClipCandidate{a, b, c})
	if len(got) != 2 {
		t.Fatalf("expected 2 after dedup, got %d", len(got))
	}
	for _, k := range got {
		if k.ID == b.ID {
			t.Fatal("lower-scored duplicate survived dedup")
		}
	}
}
