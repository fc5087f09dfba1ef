package crom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	t.Run("Semver style template", func(t *testing.T) {
		p, err := ParsePattern("v0.1.%d")
		require.NoError(t, err)
		require.Equal(t, []SegmentSpec{
			{Literal: "v0"},
			{Literal: "1"},
			{Wildcard: true},
		}, p.Segments())
		require.False(t, p.StaticOnly())
		require.Equal(t, "v0.1.%d", p.String())
	})

	t.Run("Multiple wildcards", func(t *testing.T) {
		p, err := ParsePattern("1.2.%d.%d")
		require.NoError(t, err)
		require.Equal(t, 4, p.Len())
		require.True(t, p.Segments()[2].Wildcard)
		require.True(t, p.Segments()[3].Wildcard)
	})

	t.Run("All literal template is static only", func(t *testing.T) {
		p, err := ParsePattern("1.2.3")
		require.NoError(t, err)
		require.True(t, p.StaticOnly())
	})

	t.Run("Wildcard must be a whole segment", func(t *testing.T) {
		p, err := ParsePattern("v%d.1")
		require.NoError(t, err)
		require.Equal(t, SegmentSpec{Literal: "v%d"}, p.Segments()[0])
		require.True(t, p.StaticOnly())
	})

	t.Run("Empty template is a configuration error", func(t *testing.T) {
		_, err := ParsePattern("")
		require.Error(t, err)

		var configErr *ConfigurationError
		require.True(t, errors.As(err, &configErr))
		require.Equal(t, "pattern", configErr.Field)
		require.True(t, IsConfigurationError(err))
	})
}

func TestPatternSegmentsAreCopied(t *testing.T) {
	p := MustParsePattern("1.%d")
	segments := p.Segments()
	segments[0].Literal = "changed"

	require.Equal(t, "1", p.Segments()[0].Literal)
}

func TestMustParsePatternPanics(t *testing.T) {
	require.Panics(t, func() { MustParsePattern("") })
}
