package subtitle

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Vertical canvas the styles are designed for
const (
	playResX = 1080
	playResY = 1920
)

// wordsPerLine groups word timings into short readable lines
const wordsPerLine = 3

// word is a display word with clip-relative timing
type word struct {
	text  string
	start float64
	end   float64
}

// Renderer produces ASS subtitle documents for clips
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a subtitle renderer
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Generate builds the full ASS document for a clip. Word-level timings
// drive the animation; utterances without word timings fall back to
// whole-utterance lines.
func (r *Renderer) Generate(clip *entities.ClipCandidate, utterances []entities.Utterance, styleName, animation string) (string, error) {
	style, err := StyleFor(styleName)
	if err != nil {
		return "", err
	}
	if !ValidAnimation(animation) {
		return "", apperrors.ErrInvalidArgument(fmt.Sprintf("unknown animation: %s", animation))
	}

	words := collectWords(clip, utterances)

	var sb strings.Builder
	writeHeader(&sb, style)

	if len(words) == 0 {
		// Sentence fallback: one event per utterance inside the clip
		for _, u := range utterances {
			if u.EndTime <= clip.StartTime || u.StartTime >= clip.EndTime {
				continue
			}
			start := clampClip(u.StartTime-clip.StartTime, clip)
			end := clampClip(u.EndTime-clip.StartTime, clip)
			writeDialogue(&sb, start, end, styleText(u.Text, style))
		}
		return sb.String(), nil
	}

	for _, line := range groupLines(words) {
		switch animation {
		case AnimationNone:
			writeDialogue(&sb, line[0].start, line[len(line)-1].end, styleText(lineText(line), style))
		case AnimationHighlight:
			writeHighlight(&sb, line, style)
		case AnimationKaraoke:
			writeKaraoke(&sb, line, style)
		case AnimationCumulative:
			writeCumulative(&sb, line, style)
		}
	}

	if r.logger != nil {
		r.logger.Debug("subtitle.generated",
			zap.String("clip_id", clip.ID.String()),
			zap.String("style", styleName),
			zap.String("animation", animation),
			zap.Int("words", len(words)),
		)
	}
	return sb.String(), nil
}

// collectWords flattens word timings inside the clip range and rebases
// them to clip-relative time
func collectWords(clip *entities.ClipCandidate, utterances []entities.Utterance) []word {
	var out []word
	for _, u := range utterances {
		for _, w := range u.Words {
			if w.End <= clip.StartTime || w.Start >= clip.EndTime {
				continue
			}
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			out = append(out, word{
				text:  text,
				start: clampClip(w.Start-clip.StartTime, clip),
				end:   clampClip(w.End-clip.StartTime, clip),
			})
		}
	}
	return out
}

func clampClip(t float64, clip *entities.ClipCandidate) float64 {
	if t < 0 {
		return 0
	}
	if max := clip.Duration(); t > max {
		return max
	}
	return t
}

func groupLines(words []word) [][]word {
	var lines [][]word
	for i := 0; i < len(words); i += wordsPerLine {
		end := i + wordsPerLine
		if end > len(words) {
			end = len(words)
		}
		lines = append(lines, words[i:end])
	}
	return lines
}

func lineText(line []word) string {
	parts := make([]string, len(line))
	for i, w := range line {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

func styleText(text string, style Style) string {
	if style.Uppercase {
		return strings.ToUpper(text)
	}
	return text
}

// writeHighlight emits one event per word, re-rendering the line with
// the active word in the highlight color
func writeHighlight(sb *strings.Builder, line []word, style Style) {
	for i := range line {
		start := line[i].start
		end := line[i].end
		if i+1 < len(line) {
			end = line[i+1].start
		}
		parts := make([]string, len(line))
		for j, w := range line {
			text := styleText(w.text, style)
			if j == i {
				parts[j] = fmt.Sprintf("{\\c%s}%s{\\c%s}", style.HighlightColor, text, style.PrimaryColor)
			} else {
				parts[j] = text
			}
		}
		writeDialogue(sb, start, end, strings.Join(parts, " "))
	}
}

// writeKaraoke emits a single event with \k sweep timings in
// centiseconds
func writeKaraoke(sb *strings.Builder, line []word, style Style) {
	var text strings.Builder
	for i, w := range line {
		dur := int((w.end - w.start) * 100)
		if dur < 1 {
			dur = 1
		}
		if i > 0 {
			text.WriteString(" ")
		}
		fmt.Fprintf(&text, "{\\k%d}%s", dur, styleText(w.text, style))
	}
	writeDialogue(sb, line[0].start, line[len(line)-1].end, text.String())
}

// writeCumulative reveals the line one word at a time
func writeCumulative(sb *strings.Builder, line []word, style Style) {
	for i := range line {
		start := line[i].start
		end := line[len(line)-1].end
		if i+1 < len(line) {
			end = line[i+1].start
		}
		writeDialogue(sb, start, end, styleText(lineText(line[:i+1]), style))
	}
}

func writeHeader(sb *strings.Builder, style Style) {
	fmt.Fprintf(sb, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nWrapStyle: 0\n\n", playResX, playResY)
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(sb, "Style: Default,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,1,%.1f,%.1f,%d,60,60,%d,1\n\n",
		style.FontName, style.FontSize, style.PrimaryColor, style.HighlightColor,
		style.OutlineColor, style.BackColor, style.Bold, style.Outline, style.Shadow,
		style.Alignment, style.MarginV)
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func writeDialogue(sb *strings.Builder, start, end float64, text string) {
	if end <= start {
		end = start + 0.01
	}
	fmt.Fprintf(sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", assTime(start), assTime(end), text)
}

// assTime formats seconds as h:mm:ss.cc
func assTime(t float64) string {
	if t < 0 {
		t = 0
	}
	cs := int(t*100 + 0.5)
	h := cs / 360000
	cs %= 360000
	m := cs / 6000
	cs %= 6000
	s := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}
