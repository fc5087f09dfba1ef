package crom

import (
	"fmt"
	"strings"
)

// Wildcard is the template token marking a segment whose value changes from
// release to release.
const Wildcard = "%d"

// separator splits both templates and tags into segments. Literal segments
// can never contain it.
const separator = "."

// SegmentSpec is one dot-delimited position of a Pattern.
type SegmentSpec struct {
	// Literal is the exact text required at this position. Empty when
	// Wildcard is set.
	Literal string

	// Wildcard marks a position bound to a non-negative integer.
	Wildcard bool
}

func (s SegmentSpec) String() string {
	if s.Wildcard {
		return Wildcard
	}
	return s.Literal
}

// Pattern is a parsed version template such as "v0.1.%d" or "1.2.%d.%d".
// It is never modified after ParsePattern returns and may be shared freely.
type Pattern struct {
	template   string
	segments   []SegmentSpec
	staticOnly bool
}

// ParsePattern splits template on "." and turns every "%d" token into a
// wildcard. An empty template is a configuration error.
func ParsePattern(template string) (*Pattern, error) {
	if template == "" {
		return nil, &ConfigurationError{
			Field:  "pattern",
			Value:  template,
			Reason: "version pattern must not be empty",
		}
	}

	tokens := strings.Split(template, separator)
	segments := make([]SegmentSpec, 0, len(tokens))
	staticOnly := true
	for _, token := range tokens {
		if token == Wildcard {
			segments = append(segments, SegmentSpec{Wildcard: true})
			staticOnly = false
			continue
		}
		segments = append(segments, SegmentSpec{Literal: token})
	}

	return &Pattern{
		template:   template,
		segments:   segments,
		staticOnly: staticOnly,
	}, nil
}

// MustParsePattern is like ParsePattern but panics on error. Intended for
// templates known at compile time.
func MustParsePattern(template string) *Pattern {
	p, err := ParsePattern(template)
	if err != nil {
		panic(fmt.Sprintf("crom: %v", err))
	}
	return p
}

// Len returns the number of segments.
func (p *Pattern) Len() int {
	return len(p.segments)
}

// Segments returns a copy of the parsed segments.
func (p *Pattern) Segments() []SegmentSpec {
	out := make([]SegmentSpec, len(p.segments))
	copy(out, p.segments)
	return out
}

// StaticOnly reports whether the pattern has no wildcard segment. Versions
// built from such a pattern can't be bumped.
func (p *Pattern) StaticOnly() bool {
	return p.staticOnly
}

func (p *Pattern) String() string {
	return p.template
}
