package crom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	m := NewMatcher(MustParsePattern("1.2.%d"))
	latest := mustMatch(t, "1.2.%d", "1.2.3")
	sorted := []Version{mustMatch(t, "1.2.%d", "1.2.1"), latest}

	tests := []struct {
		name     string
		policy   Policy
		atHead   bool
		expected string
	}{
		{"Snapshot when HEAD moved", KeepOrSnapshot, false, "1.2.3-SNAPSHOT"},
		{"Snapshot keeps tagged release", KeepOrSnapshot, true, "1.2.3"},
		{"Strip snapshot when HEAD moved", KeepOrStripSnapshot, false, "1.2.3"},
		{"Strip snapshot keeps tagged release", KeepOrStripSnapshot, true, "1.2.3"},
		{"Bump when HEAD moved", KeepOrBumpIfDirty, false, "1.2.4"},
		{"Bump keeps tagged release", KeepOrBumpIfDirty, true, "1.2.3"},
		{"Always bump when HEAD moved", AlwaysBumpOnce, false, "1.2.4"},
		{"Always bump even at the tag", AlwaysBumpOnce, true, "1.2.4"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := NewRepoState(true, test.atHead)
			require.Equal(t, test.expected, Resolve(m, sorted, state, test.policy).String())
		})
	}
}

func TestResolveBootstrap(t *testing.T) {
	m := NewMatcher(MustParsePattern("v0.1.%d"))

	v := Resolve(m, nil, NewRepoState(true, false), KeepOrSnapshot)
	require.Equal(t, "v0.1.0-SNAPSHOT", v.String())
	require.True(t, v.IsSnapshot())
}

func TestLatest(t *testing.T) {
	m := NewMatcher(MustParsePattern("1.2.%d"))

	require.Equal(t, "1.2.0", Latest(m, nil).String())
	require.Equal(t, "1.2.9", Latest(m, m.MatchAll([]string{"1.2.9", "1.2.2"})).String())
}

func TestNewRepoState(t *testing.T) {
	require.Equal(t, RepoState{WorkspaceClean: true, HeadMatchesLatestTag: true}, NewRepoState(true, true))
	require.Equal(t, RepoState{WorkspaceClean: false, HeadMatchesLatestTag: false}, NewRepoState(false, true))
	require.Equal(t, RepoState{WorkspaceClean: true, HeadMatchesLatestTag: false}, NewRepoState(true, false))
}

func TestDirtyWorkspaceIsNeverAtHead(t *testing.T) {
	latest := mustMatch(t, "1.2.%d", "1.2.3")

	v := KeepOrSnapshot.Apply(latest, NewRepoState(false, true))
	require.Equal(t, "1.2.3-SNAPSHOT", v.String())
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{KeepOrSnapshot, KeepOrStripSnapshot, KeepOrBumpIfDirty, AlwaysBumpOnce} {
		parsed, err := ParsePolicy(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}

	parsed, err := ParsePolicy("SNAPSHOT")
	require.NoError(t, err)
	require.Equal(t, KeepOrSnapshot, parsed)

	_, err = ParsePolicy("sometimes")
	require.Error(t, err)
	require.Equal(t, "Policy(42)", Policy(42).String())
}
