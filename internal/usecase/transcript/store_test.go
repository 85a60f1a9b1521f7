package transcript

import (
	"context"
	"testing"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

type storeEpisodes struct {
	episodes map[string]*entities.Episode
	upserts  int
}

func (f *storeEpisodes) Upsert(ctx context.Context, episode *entities.Episode) error {
	f.upserts++
	cp := *episode
	if existing, ok := f.episodes[episode.ID]; ok {
		cp.Status = existing.Status
	}
	f.episodes[episode.ID] = &cp
	return nil
}

func (f *storeEpisodes) GetByID(ctx context.Context, id string) (*entities.Episode, error) {
	e, ok := f.episodes[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *storeEpisodes) List(ctx context.Context) ([]entities.Episode, error) { return nil, nil }

func (f *storeEpisodes) UpdateStatus(ctx context.Context, id string, status entities.EpisodeStatus) error {
	return nil
}

func (f *storeEpisodes) SetFlags(ctx context.Context, id string, hasVideo, hasTranscript bool) error {
	return nil
}

// storeUtterances mimics the delete-then-insert swap of the SQL
// implementation
type storeUtterances struct {
	rows map[string][]entities.Utterance
}

func (f *storeUtterances) ReplaceForEpisode(ctx context.Context, episodeID string, utterances []entities.Utterance) error {
	delete(f.rows, episodeID)
	f.rows[episodeID] = append([]entities.Utterance(nil), utterances...)
	return nil
}

func (f *storeUtterances) ListByEpisode(ctx context.Context, episodeID string) ([]entities.Utterance, error) {
	return append([]entities.Utterance(nil), f.rows[episodeID]...), nil
}

func TestUploadTwiceLeavesOneCopy(t *testing.T) {
	episodes := &storeEpisodes{episodes: map[string]*entities.Episode{}}
	utterances := &storeUtterances{rows: map[string][]entities.Utterance{}}
	store := NewStore(episodes, utterances, nil)

	episode := entities.NewEpisode(1, "Episode One")
	raw := []entities.Utterance{
		{Speaker: "A", Text: "hello there", StartTime: 0, EndTime: 2},
		{Speaker: "B", Text: "welcome back", StartTime: 2, EndTime: 4},
		{Speaker: "A", Text: "today we talk shop", StartTime: 4, EndTime: 9},
	}

	for i := 0; i < 2; i++ {
		if err := store.Upload(context.Background(), episode, raw); err != nil {
			t.Fatalf("upload %d returned error: %v", i+1, err)
		}
	}

	stored, err := store.Load(context.Background(), "EP001")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("double upload must leave exactly one copy, got %d rows", len(stored))
	}
	seen := map[int]bool{}
	for _, u := range stored {
		if u.EpisodeID != "EP001" {
			t.Fatalf("utterance missing episode id: %+v", u)
		}
		if seen[u.UtteranceIndex] {
			t.Fatalf("duplicate utterance index %d", u.UtteranceIndex)
		}
		seen[u.UtteranceIndex] = true
	}

	ep, _ := episodes.GetByID(context.Background(), "EP001")
	if !ep.HasTranscript {
		t.Fatal("upload must set the transcript flag")
	}
	if ep.DurationSeconds != 9 {
		t.Fatalf("duration must come from the last utterance, got %.0f", ep.DurationSeconds)
	}
	if episodes.upserts != 2 {
		t.Fatalf("each upload upserts the episode once, got %d", episodes.upserts)
	}
}
