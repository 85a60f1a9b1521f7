package reframe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/pkg/ffmpeg"
)

// Output geometry for vertical clips
const (
	outWidth  = 1080
	outHeight = 1920
)

// cropWidthExpr is the 9:16 slice of the source, in filter expression
// form so it adapts to any input resolution
const cropWidthExpr = "ih*9/16"

// encodeArgs is the shared output encoding profile
var encodeArgs = []string{
	"-c:v", "libx264",
	"-preset", "fast",
	"-crf", "23",
	"-c:a", "aac",
	"-b:a", "128k",
	"-movflags", "+faststart",
}

// Reframer cuts a candidate range out of the episode and converts it to
// the vertical format requested by the job
type Reframer struct {
	runner  ffmpeg.Runner
	tracker Tracker
	logger  *zap.Logger
}

// NewReframer creates a reframer
func NewReframer(runner ffmpeg.Runner, tracker Tracker, logger *zap.Logger) *Reframer {
	if tracker == nil {
		tracker = NewSpeakerTracker()
	}
	return &Reframer{runner: runner, tracker: tracker, logger: logger}
}

// Render produces the clip file. subtitlePath, when set, is burned into
// the output. Dynamic tracking failure falls back to the static center
// crop; it never fails the clip.
func (r *Reframer) Render(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate,
	mode entities.ReframeMode, utterances []entities.Utterance, subtitlePath string) error {

	switch mode {
	case entities.ReframeModeOriginal:
		return r.renderOriginal(ctx, inputPath, outputPath, clip, subtitlePath)
	case entities.ReframeModeCenter:
		return r.renderCenter(ctx, inputPath, outputPath, clip, subtitlePath)
	case entities.ReframeModeSplit:
		return r.renderSplit(ctx, inputPath, outputPath, clip, subtitlePath)
	case entities.ReframeModeDynamic:
		return r.renderDynamic(ctx, inputPath, outputPath, clip, utterances, subtitlePath)
	default:
		return apperrors.ErrInvalidArgument(fmt.Sprintf("unknown reframe mode: %s", mode))
	}
}

func clipArgs(inputPath string, clip *entities.ClipCandidate) []string {
	return []string{
		"-ss", fmt.Sprintf("%.3f", clip.StartTime),
		"-t", fmt.Sprintf("%.3f", clip.Duration()),
		"-i", inputPath,
	}
}

func (r *Reframer) renderOriginal(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate, subtitlePath string) error {
	args := clipArgs(inputPath, clip)
	if subtitlePath == "" {
		// Pure cut, no re-encode needed
		args = append(args, "-c", "copy", outputPath)
	} else {
		fb := ffmpeg.NewFilterBuilder().Ass(subtitlePath)
		args = append(args, "-vf", fb.String())
		args = append(args, encodeArgs...)
		args = append(args, outputPath)
	}
	if err := r.runner.Run(ctx, args...); err != nil {
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}
	return nil
}

func (r *Reframer) renderCenter(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate, subtitlePath string) error {
	fb := ffmpeg.NewFilterBuilder().
		Crop(cropWidthExpr, "ih", "(iw-"+cropWidthExpr+")/2", "0").
		Scale(outWidth, outHeight)
	if subtitlePath != "" {
		fb.Ass(subtitlePath)
	}

	args := append(clipArgs(inputPath, clip), "-vf", fb.String())
	args = append(args, encodeArgs...)
	args = append(args, outputPath)

	if err := r.runner.Run(ctx, args...); err != nil {
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}
	return nil
}

// renderSplit stacks the left and right halves of the frame into a
// top/bottom vertical layout for two-camera podcast setups
func (r *Reframer) renderSplit(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate, subtitlePath string) error {
	graph := fmt.Sprintf(
		"[0:v]crop=iw/2:ih:0:0,scale=%d:%d[top];"+
			"[0:v]crop=iw/2:ih:iw/2:0,scale=%d:%d[bottom];"+
			"[top][bottom]vstack=inputs=2[stacked]",
		outWidth, outHeight/2, outWidth, outHeight/2)
	outLabel := "[stacked]"
	if subtitlePath != "" {
		graph += ";[stacked]ass=" + escapeGraphPath(subtitlePath) + "[v]"
		outLabel = "[v]"
	}

	args := append(clipArgs(inputPath, clip),
		"-filter_complex", graph,
		"-map", outLabel,
		"-map", "0:a?",
	)
	args = append(args, encodeArgs...)
	args = append(args, outputPath)

	if err := r.runner.Run(ctx, args...); err != nil {
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}
	return nil
}

// renderDynamic follows the tracked subject with an animated crop. The
// trajectory is fed to ffmpeg through a sendcmd script so a single
// encode pass covers the whole clip.
func (r *Reframer) renderDynamic(ctx context.Context, inputPath, outputPath string, clip *entities.ClipCandidate,
	utterances []entities.Utterance, subtitlePath string) error {

	frames, err := r.tracker.Track(ctx, inputPath, clip, utterances)
	if err != nil {
		if errors.Is(err, entities.ErrTrackingLost) {
			if r.logger != nil {
				r.logger.Warn("reframe.tracking_lost",
					zap.String("clip_id", clip.ID.String()),
					zap.String("fallback", string(entities.ReframeModeCenter)),
				)
			}
			return r.renderCenter(ctx, inputPath, outputPath, clip, subtitlePath)
		}
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}

	cmdFile, err := writeSendcmd(frames)
	if err != nil {
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}
	defer os.Remove(cmdFile)

	fb := ffmpeg.NewFilterBuilder().
		Sendcmd(cmdFile).
		Crop(cropWidthExpr, "ih", "(iw-"+cropWidthExpr+")/2", "0").
		Scale(outWidth, outHeight)
	if subtitlePath != "" {
		fb.Ass(subtitlePath)
	}

	args := append(clipArgs(inputPath, clip), "-vf", fb.String())
	args = append(args, encodeArgs...)
	args = append(args, outputPath)

	if err := r.runner.Run(ctx, args...); err != nil {
		return apperrors.ErrRenderFailed(clip.ID.String(), err)
	}
	return nil
}

// writeSendcmd emits one crop-x command per keyframe. The x expression
// centers the 9:16 window on the subject and clamps it inside the frame.
func writeSendcmd(frames []Keyframe) (string, error) {
	f, err := os.CreateTemp("", "sendcmd-*.txt")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, kf := range frames {
		x := fmt.Sprintf("clip(iw*%.4f-(%s)/2,0,iw-(%s))", kf.CenterX, cropWidthExpr, cropWidthExpr)
		fmt.Fprintf(&sb, "%.3f crop x '%s';\n", kf.Time, x)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func escapeGraphPath(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return r.Replace(p)
}
