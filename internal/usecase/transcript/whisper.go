package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"gorm.io/datatypes"
)

// WhisperSource transcribes episode media locally through a
// whisperx-compatible CLI that emits word-aligned, diarized JSON.
type WhisperSource struct {
	binPath string
	logger  *zap.Logger
}

// NewWhisperSource creates a local whisper source
func NewWhisperSource(binPath string, logger *zap.Logger) *WhisperSource {
	if binPath == "" {
		binPath = "whisperx"
	}
	return &WhisperSource{binPath: binPath, logger: logger}
}

// Name returns the source identifier
func (s *WhisperSource) Name() entities.TranscriptionSource {
	return entities.SourceLocalWhisper
}

// whisperOutput matches the CLI's JSON document
type whisperOutput struct {
	Segments []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Text    string  `json:"text"`
		Speaker string  `json:"speaker"`
		Words   []struct {
			Word    string  `json:"word"`
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Score   float64 `json:"score"`
			Speaker string  `json:"speaker"`
		} `json:"words"`
	} `json:"segments"`
}

// Fetch runs the CLI against the episode media and parses its output
func (s *WhisperSource) Fetch(ctx context.Context, episode *entities.Episode) ([]entities.Utterance, error) {
	if episode.MediaPath == "" {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), entities.ErrNoMedia)
	}
	if _, err := exec.LookPath(s.binPath); err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}

	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, s.binPath,
		episode.MediaPath,
		"--output_format", "json",
		"--output_dir", outDir,
		"--diarize",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if s.logger != nil {
		s.logger.Info("whisper.start",
			zap.String("episode_id", episode.ID),
			zap.String("media", episode.MediaPath),
		)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()),
			fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}

	base := strings.TrimSuffix(filepath.Base(episode.MediaPath), filepath.Ext(episode.MediaPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.ErrMalformedTranscript(episode.ID, "whisper output is not valid JSON")
	}

	utterances := make([]entities.Utterance, 0, len(out.Segments))
	for _, seg := range out.Segments {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "SPEAKER_00"
		}
		var words datatypes.JSONSlice[entities.WordTiming]
		var confSum float64
		for _, w := range seg.Words {
			words = append(words, entities.WordTiming{
				Text:  strings.TrimSpace(w.Word),
				Start: w.Start,
				End:   w.End,
			})
			confSum += w.Score
		}
		confidence := 0.0
		if len(seg.Words) > 0 {
			confidence = confSum / float64(len(seg.Words))
		}
		utterances = append(utterances, entities.Utterance{
			EpisodeID:  episode.ID,
			Speaker:    speaker,
			Text:       strings.TrimSpace(seg.Text),
			StartTime:  seg.Start,
			EndTime:    seg.End,
			Confidence: confidence,
			Words:      words,
		})
	}

	return Normalize(episode.ID, utterances)
}
