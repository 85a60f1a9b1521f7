package transcript

import (
	"context"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"gorm.io/datatypes"
)

// assemblyAIPollInterval spaces status checks while a transcript runs
const assemblyAIPollInterval = 5 * time.Second

// AssemblyAISource transcribes episode media through the AssemblyAI API
// with speaker labels and word timings.
type AssemblyAISource struct {
	client *aai.Client
	logger *zap.Logger
}

// NewAssemblyAISource creates a source for the given API key
func NewAssemblyAISource(apiKey string, logger *zap.Logger) *AssemblyAISource {
	return &AssemblyAISource{
		client: aai.NewClient(apiKey),
		logger: logger,
	}
}

// Name returns the source identifier
func (s *AssemblyAISource) Name() entities.TranscriptionSource {
	return entities.SourceAssemblyAI
}

// Fetch uploads the media, submits a transcription job and polls until
// it finishes. Submission is retried with exponential backoff since the
// upload endpoint occasionally drops connections.
func (s *AssemblyAISource) Fetch(ctx context.Context, episode *entities.Episode) ([]entities.Utterance, error) {
	if episode.MediaPath == "" {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), entities.ErrNoMedia)
	}

	var transcript aai.Transcript
	submit := func() error {
		f, err := os.Open(episode.MediaPath)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer f.Close()

		uploadURL, err := s.client.Upload(ctx, f)
		if err != nil {
			return err
		}

		params := &aai.TranscriptOptionalParams{
			SpeakerLabels: aai.Bool(true),
		}
		transcript, err = s.client.Transcripts.SubmitFromURL(ctx, uploadURL, params)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 3 * time.Minute
	if err := backoff.Retry(submit, backoff.WithContext(bo, ctx)); err != nil {
		return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
	}

	if s.logger != nil && transcript.ID != nil {
		s.logger.Info("assemblyai.submitted",
			zap.String("episode_id", episode.ID),
			zap.String("transcript_id", *transcript.ID),
		)
	}

	for {
		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return s.mapTranscript(episode.ID, transcript)
		case aai.TranscriptStatusError:
			reason := "transcription failed"
			if transcript.Error != nil {
				reason = *transcript.Error
			}
			return nil, apperrors.ErrMalformedTranscript(episode.ID, reason)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(assemblyAIPollInterval):
		}

		var err error
		transcript, err = s.client.Transcripts.Get(ctx, *transcript.ID)
		if err != nil {
			return nil, apperrors.ErrSourceUnavailable(string(s.Name()), err)
		}
	}
}

// mapTranscript converts the SDK transcript to canonical utterances.
// API times are milliseconds; everything downstream uses seconds.
func (s *AssemblyAISource) mapTranscript(episodeID string, transcript aai.Transcript) ([]entities.Utterance, error) {
	utterances := make([]entities.Utterance, 0, len(transcript.Utterances))
	for _, utt := range transcript.Utterances {
		u := entities.Utterance{EpisodeID: episodeID}
		if utt.Text != nil {
			u.Text = *utt.Text
		}
		if utt.Speaker != nil {
			u.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			u.StartTime = float64(*utt.Start) / 1000.0
		}
		if utt.End != nil {
			u.EndTime = float64(*utt.End) / 1000.0
		}
		if utt.Confidence != nil {
			u.Confidence = *utt.Confidence
		}

		var words datatypes.JSONSlice[entities.WordTiming]
		for _, w := range utt.Words {
			wt := entities.WordTiming{}
			if w.Text != nil {
				wt.Text = *w.Text
			}
			if w.Start != nil {
				wt.Start = float64(*w.Start) / 1000.0
			}
			if w.End != nil {
				wt.End = float64(*w.End) / 1000.0
			}
			words = append(words, wt)
		}
		u.Words = words

		utterances = append(utterances, u)
	}

	return Normalize(episodeID, utterances)
}
