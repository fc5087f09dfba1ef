package crom

import (
	"fmt"
	"strings"
)

// Policy selects how the latest known version turns into the version a
// command emits.
type Policy int

const (
	// KeepOrSnapshot keeps the latest version when HEAD is exactly at its
	// tag, otherwise marks it as a snapshot.
	KeepOrSnapshot Policy = iota
	// KeepOrStripSnapshot keeps the latest version when HEAD is at its tag,
	// otherwise emits it without a pre-release marker.
	KeepOrStripSnapshot
	// KeepOrBumpIfDirty keeps the latest version when HEAD is at its tag,
	// otherwise emits the next release.
	KeepOrBumpIfDirty
	// AlwaysBumpOnce always emits the next release.
	AlwaysBumpOnce
)

var policyNames = map[Policy]string{
	KeepOrSnapshot:      "snapshot",
	KeepOrStripSnapshot: "none",
	KeepOrBumpIfDirty:   "release",
	AlwaysBumpOnce:      "next",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses the names used on the command line: snapshot, none,
// release and next.
func ParsePolicy(name string) (Policy, error) {
	lower := strings.ToLower(name)
	for p, n := range policyNames {
		if n == lower {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown version policy %q", name)
}

// RepoState holds the facts about the repository the resolver needs.
type RepoState struct {
	// WorkspaceClean is true when no tracked file has uncommitted changes.
	WorkspaceClean bool

	// HeadMatchesLatestTag is true only when the workspace is clean and HEAD
	// is the commit tagged with the latest version.
	HeadMatchesLatestTag bool
}

// NewRepoState combines the two repository facts. Head parity requires a
// clean workspace.
func NewRepoState(clean, headAtLatestTag bool) RepoState {
	return RepoState{
		WorkspaceClean:       clean,
		HeadMatchesLatestTag: clean && headAtLatestTag,
	}
}

// Latest returns the greatest of sorted, or the pattern's default version
// when there are none.
func Latest(m *Matcher, sorted []Version) Version {
	if len(sorted) == 0 {
		return m.Default(0)
	}
	return sorted[len(sorted)-1]
}

// Resolve picks the latest version and applies policy to it.
func Resolve(m *Matcher, sorted []Version, state RepoState, policy Policy) Version {
	return policy.Apply(Latest(m, sorted), state)
}

// Apply transforms latest according to the policy.
func (p Policy) Apply(latest Version, state RepoState) Version {
	if p == AlwaysBumpOnce {
		return latest.NextVersion()
	}

	if state.HeadMatchesLatestTag {
		return latest
	}

	switch p {
	case KeepOrSnapshot:
		return latest.AsSnapshot()
	case KeepOrStripSnapshot:
		return latest.WithoutSnapshot()
	case KeepOrBumpIfDirty:
		return latest.NextVersion()
	default:
		return latest
	}
}
