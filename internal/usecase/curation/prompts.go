package curation

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/domain/entities"
)

// Prompt builders for the three curation agents. Every prompt demands a
// bare JSON object so responses survive the tolerant extractor even
// when a gateway ignores response_format.

const finderSystemPrompt = `You are a short-form video editor scouting a podcast transcript for clip-worthy moments.
You over-generate: propose 15 to 20 rough candidate segments, overlap between candidates is fine.
Prefer moments flagged by the provided signals but trust your own reading too.
Respond with JSON only, no commentary.`

func finderUserPrompt(transcriptChunk string, sigs []entities.Signal, minDur, maxDur float64) string {
	var sb strings.Builder
	sb.WriteString("Find 15-20 candidate clip segments in this transcript chunk.\n")
	fmt.Fprintf(&sb, "Target duration: %.0f-%.0f seconds per clip (rough cuts are fine at this stage).\n\n", minDur, maxDur)

	if len(sigs) > 0 {
		sb.WriteString("Detected signals (category/kind, time range, strength 0-10):\n")
		for _, s := range sigs {
			fmt.Fprintf(&sb, "- %s/%s %.1f-%.1f score=%.1f %s\n",
				s.Category, s.Kind, s.StartTime, s.EndTime, s.Score, s.Detail)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Output format:\n")
	sb.WriteString(`{"candidates":[{"start_time":0.0,"end_time":0.0,"reason":"...","signal_match":"..."}]}`)
	sb.WriteString("\n\nTranscript (each line is [MM:SS Speaker]: text):\n")
	sb.WriteString(transcriptChunk)
	return sb.String()
}

const criticSystemPrompt = `You are a ruthless clip critic. You receive rough candidate segments and keep only the ones that work as standalone short videos.
Keep 8 to 12 candidates. Reject anything with an incomplete thought, a weak opening hook, or that needs prior context to land.
Every rejection carries one reason code from: incomplete_thought, weak_hook, too_short, too_long, context_dependent, avoid_zone, low_quality.
Use avoid_zone for segments that are clearly episode intro or outro boilerplate.
Respond with JSON only, no commentary.`

func criticUserPrompt(candidates []entities.ClipCandidate, transcript string, minDur, maxDur float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Acceptable duration: %.0f-%.0f seconds.\n\n", minDur, maxDur)
	sb.WriteString("Candidates:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %.1f-%.1f (%.0fs): %s\n", i+1, c.StartTime, c.EndTime, c.Duration(), c.Reason)
	}
	sb.WriteString("\nOutput format:\n")
	sb.WriteString(`{"approved":[{"start_time":0.0,"end_time":0.0,"approval_reason":"..."}],` +
		`"rejected":[{"start_time":0.0,"end_time":0.0,"rejection_reason":"weak_hook"}]}`)
	sb.WriteString("\n\nTranscript for reference:\n")
	sb.WriteString(transcript)
	return sb.String()
}

const rankerSystemPrompt = `You are a virality analyst scoring approved podcast clips.
Score every clip on ten dimensions, each 0-10:
- text: hook_strength, quotability, storytelling, controversy
- audio: energy_level, pacing, emotional_arc
- structural: standalone_clarity, segment_completeness, optimal_duration
Also produce a short punchy title, a one-sentence summary, a content category and 3-5 hashtags per clip.
Respond with JSON only, no commentary.`

func rankerUserPrompt(candidates []entities.ClipCandidate, transcript string) string {
	var sb strings.Builder
	sb.WriteString("Score these clips:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %.1f-%.1f (%.0fs): %s\n", i+1, c.StartTime, c.EndTime, c.Duration(), c.Reason)
	}
	sb.WriteString("\nOutput format:\n")
	sb.WriteString(`{"ranked_clips":[{"start_time":0.0,"end_time":0.0,"title":"...","summary":"...","category":"...",` +
		`"virality_score":{"hook_strength":0,"quotability":0,"storytelling":0,"controversy":0,` +
		`"energy_level":0,"pacing":0,"emotional_arc":0,` +
		`"standalone_clarity":0,"segment_completeness":0,"optimal_duration":0},` +
		`"suggested_hashtags":["..."]}]}`)
	sb.WriteString("\n\nTranscript for reference:\n")
	sb.WriteString(transcript)
	return sb.String()
}
