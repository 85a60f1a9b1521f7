// Package subtitle generates ASS subtitle files for rendered clips.
package subtitle

import (
	"fmt"

	apperrors "github.com/clipforge/clipforge/errors"
)

// Style names accepted in job configs
const (
	StyleHormozi     = "hormozi"
	StyleMrBeast     = "mrbeast"
	StyleMinimal     = "minimal"
	StylePodcast     = "podcast"
	StyleSplitscreen = "splitscreen"
)

// Animation names accepted in job configs
const (
	AnimationHighlight  = "highlight"
	AnimationKaraoke    = "karaoke"
	AnimationCumulative = "cumulative"
	AnimationNone       = "none"
)

// Style is a visual preset rendered into the ASS style header. Colors
// are ASS &HAABBGGRR values.
type Style struct {
	Name           string
	FontName       string
	FontSize       int
	PrimaryColor   string
	HighlightColor string
	OutlineColor   string
	BackColor      string
	Bold           int
	Outline        float64
	Shadow         float64
	Alignment      int // ASS numpad alignment
	MarginV        int
	Uppercase      bool
}

// styles holds the five presets
var styles = map[string]Style{
	StyleHormozi: {
		Name:           StyleHormozi,
		FontName:       "Montserrat ExtraBold",
		FontSize:       110,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000FF00", // green on active word
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           1,
		Outline:        6,
		Shadow:         2,
		Alignment:      2,
		MarginV:        320,
		Uppercase:      true,
	},
	StyleMrBeast: {
		Name:           StyleMrBeast,
		FontName:       "Komika Axis",
		FontSize:       120,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H0000D7FF", // gold
		OutlineColor:   "&H00000000",
		BackColor:      "&H00000000",
		Bold:           1,
		Outline:        8,
		Shadow:         4,
		Alignment:      5,
		MarginV:        0,
		Uppercase:      true,
	},
	StyleMinimal: {
		Name:           StyleMinimal,
		FontName:       "Helvetica Neue",
		FontSize:       72,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H00FFFFFF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H60000000",
		Bold:           0,
		Outline:        2,
		Shadow:         0,
		Alignment:      2,
		MarginV:        200,
	},
	StylePodcast: {
		Name:           StylePodcast,
		FontName:       "Georgia",
		FontSize:       80,
		PrimaryColor:   "&H00F0F0F0",
		HighlightColor: "&H0000FFFF", // yellow
		OutlineColor:   "&H00202020",
		BackColor:      "&H70000000",
		Bold:           0,
		Outline:        3,
		Shadow:         1,
		Alignment:      2,
		MarginV:        260,
	},
	StyleSplitscreen: {
		Name:           StyleSplitscreen,
		FontName:       "Arial Black",
		FontSize:       88,
		PrimaryColor:   "&H00FFFFFF",
		HighlightColor: "&H00FF8000", // light blue
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		Bold:           1,
		Outline:        4,
		Shadow:         1,
		Alignment:      5, // center band between the stacked frames
		MarginV:        0,
		Uppercase:      true,
	},
}

// StyleFor resolves a style name
func StyleFor(name string) (Style, error) {
	s, ok := styles[name]
	if !ok {
		return Style{}, apperrors.ErrInvalidArgument(fmt.Sprintf("unknown subtitle_style: %s", name))
	}
	return s, nil
}

// ValidAnimation reports whether the animation name is supported
func ValidAnimation(name string) bool {
	switch name {
	case AnimationHighlight, AnimationKaraoke, AnimationCumulative, AnimationNone:
		return true
	}
	return false
}
