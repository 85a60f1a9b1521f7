package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

type fakeEpisodes struct {
	episodes map[string]*entities.Episode
}

func newFakeEpisodes() *fakeEpisodes {
	return &fakeEpisodes{episodes: make(map[string]*entities.Episode)}
}

func (f *fakeEpisodes) Upsert(ctx context.Context, episode *entities.Episode) error {
	cp := *episode
	// The status column is not in the real upsert's update set
	if existing, ok := f.episodes[episode.ID]; ok {
		cp.Status = existing.Status
	}
	f.episodes[episode.ID] = &cp
	return nil
}

func (f *fakeEpisodes) GetByID(ctx context.Context, id string) (*entities.Episode, error) {
	e, ok := f.episodes[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEpisodes) List(ctx context.Context) ([]entities.Episode, error) {
	var out []entities.Episode
	for _, e := range f.episodes {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEpisodes) UpdateStatus(ctx context.Context, id string, status entities.EpisodeStatus) error {
	if e, ok := f.episodes[id]; ok {
		e.Status = status
	}
	return nil
}

func (f *fakeEpisodes) SetFlags(ctx context.Context, id string, hasVideo, hasTranscript bool) error {
	return nil
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
}

func TestScanRegistersMediaFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "EP001 - Pilot.mp4")
	touch(t, dir, "2.mp3")
	touch(t, dir, "notes.txt")
	touch(t, dir, "trailer.mp4") // no episode number

	repo := newFakeEpisodes()
	n, err := NewScanner(repo, dir, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 discovered episodes, got %d", n)
	}

	ep1, _ := repo.GetByID(context.Background(), "EP001")
	if ep1 == nil {
		t.Fatal("EP001 not registered")
	}
	if !ep1.HasVideo || ep1.Title != "EP001 - Pilot" || ep1.MediaPath != filepath.Join(dir, "EP001 - Pilot.mp4") {
		t.Fatalf("unexpected EP001 row: %+v", ep1)
	}
	if ep1.Status != entities.EpisodeStatusUnprocessed {
		t.Fatalf("new episode must start unprocessed, got %s", ep1.Status)
	}

	ep2, _ := repo.GetByID(context.Background(), "EP002")
	if ep2 == nil {
		t.Fatal("EP002 not registered")
	}
	if ep2.HasVideo {
		t.Fatal("audio-only episode must not be flagged has_video")
	}
}

func TestScanPreservesKnownEpisodeState(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "EP003.mp4")

	repo := newFakeEpisodes()
	known := entities.NewEpisode(3, "Episode Three")
	known.Status = entities.EpisodeStatusProcessed
	known.HasTranscript = true
	known.DurationSeconds = 1800
	if err := repo.Upsert(context.Background(), known); err != nil {
		t.Fatalf("seeding episode failed: %v", err)
	}

	if _, err := NewScanner(repo, dir, nil).Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	ep, _ := repo.GetByID(context.Background(), "EP003")
	if ep.Status != entities.EpisodeStatusProcessed {
		t.Fatalf("rescan must not reset episode status, got %s", ep.Status)
	}
	if !ep.HasTranscript || ep.DurationSeconds != 1800 {
		t.Fatalf("rescan must keep transcript flag and duration: %+v", ep)
	}
	if ep.Title != "Episode Three" {
		t.Fatalf("known title clobbered: %q", ep.Title)
	}
	if ep.MediaPath != filepath.Join(dir, "EP003.mp4") {
		t.Fatalf("media path not refreshed: %q", ep.MediaPath)
	}
	if !ep.HasVideo {
		t.Fatal("video flag not refreshed")
	}
}

func TestScanMissingDirectoryErrors(t *testing.T) {
	repo := newFakeEpisodes()
	if _, err := NewScanner(repo, "/does/not/exist", nil).Scan(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
