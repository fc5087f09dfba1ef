package crom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		tag     string
		matches bool
	}{
		{"1.2.%d", "1.2.3", true},
		{"1.2.%d", "1.2.10", true},
		{"1.2.%d", "1.2", false},
		{"1.2.%d", "1.2.3.4", false},
		{"1.2.%d", "2.2.3", false},
		{"1.2.%d", "1.2.x", false},
		{"1.2.%d", "1.2.-1", false},
		{"1.2.%d", "1.2.+1", false},
		{"1.2.%d", "1.2.03", false},
		{"1.2.%d", "1.2.0", true},
		{"1.2.%d", "1.2.", false},
		{"a.b.%d", "a.b.3", true},
		{"a.b.%d", "A.b.3", false},
		{"v0.1.%d", "v0.1.7", true},
		{"v0.1.%d", "0.1.7", false},
		{"%d", "42", true},
		{"%d", "v42", false},
		{"1.2.%d.%d", "1.2.3.4", true},
		{"1.2.3", "1.2.3", true},
	}

	for _, test := range tests {
		t.Run(test.pattern+" "+test.tag, func(t *testing.T) {
			v, ok := NewMatcher(MustParsePattern(test.pattern)).Match(test.tag)
			require.Equal(t, test.matches, ok)
			if ok {
				require.Equal(t, test.tag, v.String())
				require.Empty(t, v.PreRelease())
			}
		})
	}
}

func TestDefault(t *testing.T) {
	m := NewMatcher(MustParsePattern("v0.1.%d"))

	v := m.Default(0)
	require.Equal(t, "v0.1.0", v.String())
	require.Equal(t, "v0.1.5", m.Default(5).String())

	matched, ok := m.Match(v.String())
	require.True(t, ok)
	require.True(t, matched.Equal(v))
	require.Equal(t, 0, matched.Compare(v))
}

func TestDefaultStaticPattern(t *testing.T) {
	m := NewMatcher(MustParsePattern("1.2.3"))

	v := m.Default(0)
	require.True(t, v.IsStatic())
	require.Equal(t, "1.2.3", v.String())
}

func TestMatchAll(t *testing.T) {
	m := NewMatcher(MustParsePattern("1.2.%d"))

	versions := m.MatchAll([]string{"1.2.10", "1.2.3.4", "release-1", "1.2.9", "1.2.1", "2.0.0"})
	require.Len(t, versions, 3)
	require.Equal(t, "1.2.1", versions[0].String())
	require.Equal(t, "1.2.9", versions[1].String())
	require.Equal(t, "1.2.10", versions[2].String())
}

func TestMatchAllEmpty(t *testing.T) {
	m := NewMatcher(MustParsePattern("1.2.%d"))

	require.Empty(t, m.MatchAll(nil))
	require.Empty(t, m.MatchAll([]string{"nope"}))
}
