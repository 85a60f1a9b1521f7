package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner abstracts ffmpeg/ffprobe invocation so rendering code can be
// tested without the binaries installed.
type Runner interface {
	Run(ctx context.Context, args ...string) error
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// Executor shells out to the configured ffmpeg and ffprobe binaries
type Executor struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// NewExecutor creates an Executor. Empty paths fall back to binaries on
// PATH.
func NewExecutor(ffmpegPath, ffprobePath string, logger *zap.Logger) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Executor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// Run executes ffmpeg with the given arguments. -y and quiet logging
// flags are prepended so callers only pass the transform itself.
func (e *Executor) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if e.logger != nil {
		e.logger.Debug("ffmpeg.run", zap.String("args", strings.Join(args, " ")))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 500))
	}
	return nil
}

// tail returns at most n trailing bytes of s, ffmpeg errors end with the
// useful part
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
