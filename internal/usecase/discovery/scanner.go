// Package discovery registers episodes from media files found in the
// configured episodes directory.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/internal/domain/repositories"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
}

// episodeNumberPattern pulls the episode number out of a file name,
// e.g. "EP042 - Guest Name.mp4" or "42.mp3"
var episodeNumberPattern = regexp.MustCompile(`\d+`)

// Scanner walks the episodes directory and upserts an episode row per
// recognizable media file
type Scanner struct {
	episodes repositories.EpisodeRepository
	dir      string
	logger   *zap.Logger
}

// NewScanner creates a directory scanner
func NewScanner(episodes repositories.EpisodeRepository, dir string, logger *zap.Logger) *Scanner {
	return &Scanner{episodes: episodes, dir: dir, logger: logger}
}

// Scan registers every media file in the directory as an episode and
// returns how many were upserted. Known episodes keep their status,
// transcript flag and duration; only the media path, title and video
// flag are refreshed.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read episodes dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !videoExtensions[ext] && !audioExtensions[ext] {
			continue
		}

		number, ok := episodeNumber(name)
		if !ok {
			if s.logger != nil {
				s.logger.Warn("discovery.unnumbered_file", zap.String("file", name))
			}
			continue
		}

		episode := entities.NewEpisode(number, strings.TrimSuffix(name, filepath.Ext(name)))
		existing, err := s.episodes.GetByID(ctx, episode.ID)
		if err != nil {
			return count, err
		}
		if existing != nil {
			existing.MediaPath = filepath.Join(s.dir, name)
			existing.HasVideo = videoExtensions[ext]
			episode = existing
		} else {
			episode.MediaPath = filepath.Join(s.dir, name)
			episode.HasVideo = videoExtensions[ext]
		}

		if err := s.episodes.Upsert(ctx, episode); err != nil {
			return count, err
		}
		count++
	}

	if s.logger != nil {
		s.logger.Info("discovery.scan_complete",
			zap.String("dir", s.dir),
			zap.Int("episodes", count),
		)
	}
	return count, nil
}

func episodeNumber(name string) (int, bool) {
	m := episodeNumberPattern.FindString(name)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
