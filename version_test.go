package crom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustMatch(t *testing.T, pattern, tag string) Version {
	t.Helper()
	v, ok := NewMatcher(MustParsePattern(pattern)).Match(tag)
	require.True(t, ok, "tag %q should match %q", tag, pattern)
	return v
}

func TestVersionString(t *testing.T) {
	v := NewVersion(LiteralSegment("v1"), NumericSegment(2), NumericSegment(10))

	require.Equal(t, "v1.2.10", v.String())
	require.Equal(t, "v1.3.11-SNAPSHOT", v.NextSnapshot().String())
	require.Equal(t, "v1.3.11-abc1234", v.NextPreRelease("abc1234").String())
	require.Equal(t, "SNAPSHOT", v.NextSnapshot().PreRelease())
	require.Empty(t, v.PreRelease())
}

func TestNextVersion(t *testing.T) {
	t.Run("Single wildcard", func(t *testing.T) {
		v := mustMatch(t, "1.2.3.%d", "1.2.3.5")
		require.Equal(t, "1.2.3.5", v.String())
		require.Equal(t, "1.2.3.6", v.NextVersion().String())
	})

	t.Run("Every wildcard is bumped", func(t *testing.T) {
		v := mustMatch(t, "1.%d.%d", "1.4.9")
		require.Equal(t, "1.5.10", v.NextVersion().String())
	})

	t.Run("Snapshot marker is cleared", func(t *testing.T) {
		v := mustMatch(t, "1.2.%d", "1.2.3").NextSnapshot()
		require.True(t, v.IsSnapshot())

		next := v.NextVersion()
		require.False(t, next.IsSnapshot())
		require.Equal(t, "1.2.5", next.String())
	})

	t.Run("Static version is unchanged", func(t *testing.T) {
		v := CustomVersion("4.5.3")
		require.True(t, v.IsStatic())
		require.Equal(t, "4.5.3", v.NextVersion().String())
	})

	t.Run("Original is not modified", func(t *testing.T) {
		v := mustMatch(t, "1.2.%d", "1.2.3")
		_ = v.NextVersion()
		_ = v.NextSnapshot()
		require.Equal(t, "1.2.3", v.String())
	})
}

func TestWithoutSnapshot(t *testing.T) {
	v := mustMatch(t, "1.2.%d", "1.2.3")

	require.Equal(t, "1.2.4", v.NextSnapshot().WithoutSnapshot().String())
	require.Equal(t, "1.2.3", v.WithoutSnapshot().String())
	require.Equal(t, "1.2.3", v.WithPreRelease("").String())
}

func TestAsSnapshot(t *testing.T) {
	v := mustMatch(t, "1.2.%d", "1.2.3")

	snapshot := v.AsSnapshot()
	require.Equal(t, "1.2.3-SNAPSHOT", snapshot.String())
	require.True(t, snapshot.IsSnapshot())
	require.Equal(t, "1.2.3-SNAPSHOT", v.WithPreRelease("abc1234").AsSnapshot().String())
	require.Equal(t, "1.2.3", v.String())
}

func TestVersionEqual(t *testing.T) {
	a := mustMatch(t, "1.2.%d", "1.2.3")
	b := NewVersion(NumericSegment(1), NumericSegment(2), NumericSegment(3))

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(a.NextSnapshot().WithPreRelease("x")))
	require.False(t, a.Equal(a.NextVersion()))
}

func TestVersionComparison(t *testing.T) {
	version3 := mustMatch(t, "1.2.%d", "1.2.3")
	version4 := mustMatch(t, "1.2.%d", "1.2.4")
	version33 := mustMatch(t, "1.2.3.%d", "1.2.3.3")

	require.True(t, version3.Less(version4))
	require.True(t, version3.Less(version33))
	require.True(t, version33.Less(version4))
	require.Equal(t, 0, version3.Compare(version3))
}

func TestVersionComparisonIgnoresPreRelease(t *testing.T) {
	v := mustMatch(t, "1.2.%d", "1.2.3")
	snapshot := v.NextSnapshot()

	require.Equal(t, 0, v.NextVersion().Compare(snapshot))
	require.False(t, v.NextVersion().Equal(snapshot))
}

func TestVersionOrder(t *testing.T) {
	version9 := mustMatch(t, "1.2.%d", "1.2.9")
	version10 := mustMatch(t, "1.2.%d", "1.2.10")
	version91 := mustMatch(t, "1.2.9.%d", "1.2.9.1")

	v := []Version{version10, version91, version9}
	SortVersions(v)

	require.Equal(t, "1.2.9", v[0].String())
	require.Equal(t, "1.2.9.1", v[1].String())
	require.Equal(t, "1.2.10", v[2].String())
}

func TestVersionOrderIsNumeric(t *testing.T) {
	v := []Version{
		mustMatch(t, "1.2.%d", "1.2.1"),
		mustMatch(t, "1.2.%d", "1.2.10"),
		mustMatch(t, "1.2.%d", "1.2.9"),
	}
	SortVersions(v)

	require.Equal(t, "1.2.1", v[0].String())
	require.Equal(t, "1.2.9", v[1].String())
	require.Equal(t, "1.2.10", v[2].String())
	require.True(t, v[1].Less(v[2]))
}

func TestCompareSegments(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Segment
		expected int
	}{
		{"numbers by magnitude", NumericSegment(9), NumericSegment(10), -1},
		{"equal numbers", NumericSegment(4), NumericSegment(4), 0},
		{"literals tie", LiteralSegment("a"), LiteralSegment("b"), 0},
		{"numeric literal against number", LiteralSegment("9"), NumericSegment(10), -1},
		{"number against numeric literal", NumericSegment(3), LiteralSegment("3"), 0},
		{"text literal against number", LiteralSegment("v1"), NumericSegment(0), 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, compareSegments(test.a, test.b))
		})
	}
}

func TestSegmentsAreCopied(t *testing.T) {
	v := NewVersion(NumericSegment(1))
	segments := v.Segments()
	segments[0] = NumericSegment(5)

	require.Equal(t, "1", v.String())
	require.True(t, v.Segments()[0].IsNumeric())
	require.Equal(t, uint64(1), v.Segments()[0].Number())
}
