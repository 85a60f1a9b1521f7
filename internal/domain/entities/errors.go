package entities

import "errors"

// Domain errors
var (
	// Episode errors
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrNoTranscript      = errors.New("episode has no transcript")
	ErrNoMedia           = errors.New("episode has no media file")

	// Transcript errors
	ErrMalformedTranscript = errors.New("malformed transcript")
	ErrSourceUnavailable   = errors.New("transcript source unavailable")

	// Job errors
	ErrJobNotFound       = errors.New("job not found")
	ErrJobAlreadyRunning = errors.New("job already running for episode")
	ErrJobNotCancellable = errors.New("job already finished")

	// Rendering errors
	ErrTrackingLost = errors.New("subject tracking lost")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
)
