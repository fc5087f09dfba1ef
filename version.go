// Package crom computes release versions for a project from a version
// template and the tags already present in its Git repository.
package crom

import (
	"cmp"
	"log/slog"
	"strconv"
	"strings"
)

// snapshotSuffix is appended to versions that are ahead of the latest release.
const snapshotSuffix = "SNAPSHOT"

// Segment is one resolved position of a Version: either literal text copied
// from the Pattern or a number bound from a wildcard.
type Segment struct {
	literal string
	number  uint64
	numeric bool
}

// LiteralSegment returns a segment holding fixed text.
func LiteralSegment(text string) Segment {
	return Segment{literal: text}
}

// NumericSegment returns a segment holding a wildcard value.
func NumericSegment(n uint64) Segment {
	return Segment{number: n, numeric: true}
}

// IsNumeric reports whether the segment was bound from a wildcard.
func (s Segment) IsNumeric() bool {
	return s.numeric
}

// Number returns the numeric value; zero for literal segments.
func (s Segment) Number() uint64 {
	return s.number
}

func (s Segment) String() string {
	if s.numeric {
		return strconv.FormatUint(s.number, 10)
	}
	return s.literal
}

type preReleaseKind int

const (
	noPreRelease preReleaseKind = iota
	snapshotPreRelease
	identifierPreRelease
)

// Version is one concrete version. Values are immutable: every derivation
// returns a new Version.
type Version struct {
	segments []Segment
	preKind  preReleaseKind
	preID    string
}

// NewVersion builds a release Version (no pre-release marker) from segments.
func NewVersion(segments ...Segment) Version {
	return Version{segments: cloneSegments(segments)}
}

// CustomVersion wraps an arbitrary user supplied string as a single literal
// segment. The result is static and can't be bumped.
func CustomVersion(text string) Version {
	return NewVersion(LiteralSegment(text))
}

func cloneSegments(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

// Segments returns a copy of the resolved segments.
func (v Version) Segments() []Segment {
	return cloneSegments(v.segments)
}

// IsStatic reports whether the version has no numeric segment.
func (v Version) IsStatic() bool {
	for _, s := range v.segments {
		if s.numeric {
			return false
		}
	}
	return true
}

// IsSnapshot reports whether the version carries the generic snapshot marker.
func (v Version) IsSnapshot() bool {
	return v.preKind == snapshotPreRelease
}

// PreRelease returns the pre-release marker without its leading "-", or ""
// for a release version.
func (v Version) PreRelease() string {
	switch v.preKind {
	case snapshotPreRelease:
		return snapshotSuffix
	case identifierPreRelease:
		return v.preID
	default:
		return ""
	}
}

// String joins the segments with "." and appends "-SNAPSHOT" or
// "-<identifier>" for pre-release versions.
func (v Version) String() string {
	parts := make([]string, len(v.segments))
	for i, s := range v.segments {
		parts[i] = s.String()
	}

	joined := strings.Join(parts, separator)
	if pre := v.PreRelease(); pre != "" {
		return joined + "-" + pre
	}
	return joined
}

// Equal compares the formatted forms, the same way tag names are compared.
func (v Version) Equal(other Version) bool {
	return v.String() == other.String()
}

// Compare orders versions segment by segment. Numeric segments compare by
// magnitude, so 1.2.9 < 1.2.10. Literal segments never decide the order
// unless they are compared against a number. When all shared segments tie,
// the version with fewer segments is lower. Pre-release markers are ignored.
func (v Version) Compare(other Version) int {
	shared := min(len(v.segments), len(other.segments))
	for i := 0; i < shared; i++ {
		if c := compareSegments(v.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(v.segments), len(other.segments))
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func compareSegments(a, b Segment) int {
	switch {
	case a.numeric && b.numeric:
		return cmp.Compare(a.number, b.number)
	case !a.numeric && !b.numeric:
		// All versions compared in practice come from one pattern, so
		// literals at the same position are identical.
		return 0
	}

	// Mixed literal/numeric only happens across patterns. Compare as numbers
	// when the literal is one.
	left, leftOK := parseCanonical(a.String())
	right, rightOK := parseCanonical(b.String())
	if leftOK && rightOK {
		return cmp.Compare(left, right)
	}
	return 0
}

// NextVersion bumps every numeric segment by one and clears any pre-release
// marker. Static versions are returned unchanged, with a warning.
func (v Version) NextVersion() Version {
	if v.IsStatic() {
		slog.Warn("attempting to bump a static only version", "version", v.String())
	}

	segments := cloneSegments(v.segments)
	for i := range segments {
		if segments[i].numeric {
			segments[i].number++
		}
	}
	return Version{segments: segments}
}

// NextSnapshot is NextVersion with the snapshot marker set.
func (v Version) NextSnapshot() Version {
	next := v.NextVersion()
	next.preKind = snapshotPreRelease
	return next
}

// AsSnapshot returns the same segments marked as a snapshot, e.g. 1.2.3
// becomes 1.2.3-SNAPSHOT.
func (v Version) AsSnapshot() Version {
	out := v.WithoutSnapshot()
	out.preKind = snapshotPreRelease
	return out
}

// NextPreRelease is NextVersion with id as the pre-release marker, e.g.
// 1.2.4-abc1234 for a build of commit abc1234.
func (v Version) NextPreRelease(id string) Version {
	return v.NextVersion().WithPreRelease(id)
}

// WithoutSnapshot returns the same segments with the pre-release marker
// cleared.
func (v Version) WithoutSnapshot() Version {
	return Version{segments: cloneSegments(v.segments)}
}

// WithPreRelease returns the same segments marked with id. An empty id
// clears the marker.
func (v Version) WithPreRelease(id string) Version {
	out := v.WithoutSnapshot()
	if id != "" {
		out.preKind = identifierPreRelease
		out.preID = id
	}
	return out
}

// parseCanonical parses a non-negative decimal without sign or leading
// zeros, so that formatting the result gives back the input.
func parseCanonical(s string) (uint64, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
