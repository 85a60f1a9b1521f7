package signals

import (
	"sort"

	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Config toggles the analyzer categories independently
type Config struct {
	EnableText       bool
	EnableAudio      bool
	EnableStructural bool
}

// DefaultConfig enables every category
func DefaultConfig() Config {
	return Config{EnableText: true, EnableAudio: true, EnableStructural: true}
}

// Extractor runs the enabled analyzers over a transcript
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

// NewExtractor creates an extractor with the given category toggles
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract produces all signals for the transcript. Output order is
// stable: sorted by start time, then category, then kind.
func (e *Extractor) Extract(episodeID string, utterances []entities.Utterance) []entities.Signal {
	var out []entities.Signal

	if e.cfg.EnableText {
		out = append(out, textAnalyzer{}.analyze(episodeID, utterances)...)
	}
	if e.cfg.EnableAudio {
		out = append(out, audioAnalyzer{}.analyze(episodeID, utterances)...)
	}
	if e.cfg.EnableStructural {
		out = append(out, structuralAnalyzer{}.analyze(episodeID, utterances)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Kind < out[j].Kind
	})

	if e.logger != nil {
		e.logger.Info("signals.extracted",
			zap.String("episode_id", episodeID),
			zap.Int("count", len(out)),
		)
	}
	return out
}
