package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder assembles a -vf filter chain
type FilterBuilder struct {
	parts []string
}

// NewFilterBuilder creates an empty filter chain
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Crop appends a crop filter. Expressions are allowed for any argument.
func (b *FilterBuilder) Crop(w, h, x, y string) *FilterBuilder {
	b.parts = append(b.parts, fmt.Sprintf("crop=%s:%s:%s:%s", w, h, x, y))
	return b
}

// Scale appends a scale filter
func (b *FilterBuilder) Scale(w, h int) *FilterBuilder {
	b.parts = append(b.parts, fmt.Sprintf("scale=%d:%d", w, h))
	return b
}

// Sendcmd appends a sendcmd filter reading timed commands from a file
func (b *FilterBuilder) Sendcmd(file string) *FilterBuilder {
	b.parts = append(b.parts, fmt.Sprintf("sendcmd=f=%s", escapeFilterPath(file)))
	return b
}

// Ass appends a subtitle burn-in filter
func (b *FilterBuilder) Ass(file string) *FilterBuilder {
	b.parts = append(b.parts, fmt.Sprintf("ass=%s", escapeFilterPath(file)))
	return b
}

// Raw appends a pre-built filter expression
func (b *FilterBuilder) Raw(filter string) *FilterBuilder {
	b.parts = append(b.parts, filter)
	return b
}

// Empty reports whether no filters were added
func (b *FilterBuilder) Empty() bool {
	return len(b.parts) == 0
}

// String renders the chain for -vf
func (b *FilterBuilder) String() string {
	return strings.Join(b.parts, ",")
}

// escapeFilterPath escapes characters that the filter graph parser
// treats specially in file arguments
func escapeFilterPath(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return r.Replace(p)
}
