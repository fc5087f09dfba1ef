package crom

import (
	"log/slog"
	"slices"
	"strings"
)

// Matcher turns tag names into Versions of a single Pattern.
type Matcher struct {
	pattern *Pattern
}

// NewMatcher binds a matcher to p.
func NewMatcher(p *Pattern) *Matcher {
	return &Matcher{pattern: p}
}

// Pattern returns the pattern the matcher was built from.
func (m *Matcher) Pattern() *Pattern {
	return m.pattern
}

// Match parses tag against the pattern. The tag must have exactly as many
// dot-separated parts as the pattern has segments, every literal must match
// exactly and every wildcard part must be a non-negative integer. Tags that
// don't match report false.
func (m *Matcher) Match(tag string) (Version, bool) {
	parts := strings.Split(tag, separator)
	if len(parts) != len(m.pattern.segments) {
		return Version{}, false
	}

	segments := make([]Segment, len(parts))
	for i, spec := range m.pattern.segments {
		part := parts[i]
		if !spec.Wildcard {
			if part != spec.Literal {
				return Version{}, false
			}
			segments[i] = LiteralSegment(spec.Literal)
			continue
		}

		n, ok := parseCanonical(part)
		if !ok {
			return Version{}, false
		}
		segments[i] = NumericSegment(n)
	}

	return Version{segments: segments}, true
}

// Default builds a version straight from the pattern, using seed for every
// wildcard. Default(0) is the version of a project that has never released.
func (m *Matcher) Default(seed uint64) Version {
	segments := make([]Segment, len(m.pattern.segments))
	for i, spec := range m.pattern.segments {
		if spec.Wildcard {
			segments[i] = NumericSegment(seed)
		} else {
			segments[i] = LiteralSegment(spec.Literal)
		}
	}
	return Version{segments: segments}
}

// MatchAll matches every tag, drops the ones that don't fit the pattern and
// returns the rest sorted ascending.
func (m *Matcher) MatchAll(tags []string) []Version {
	versions := make([]Version, 0, len(tags))
	for _, tag := range tags {
		v, ok := m.Match(tag)
		if !ok {
			slog.Debug("tag does not match pattern", "tag", tag, "pattern", m.pattern.String())
			continue
		}
		versions = append(versions, v)
	}

	SortVersions(versions)
	slog.Debug("tags discovered", "count", len(versions))
	return versions
}

// SortVersions sorts versions ascending in place.
func SortVersions(versions []Version) {
	slices.SortStableFunc(versions, Version.Compare)
}
