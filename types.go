package crom

// Request describes which version a command wants.
type Request struct {
	// Policy is applied to the latest version found in the repository.
	Policy Policy

	// PreRelease marks the result with the short HEAD commit id instead of
	// applying Policy, e.g. 1.2.4-abc1234.
	PreRelease bool

	// Custom, when set, is used verbatim and the repository isn't consulted.
	Custom string
}

// LatestRequest asks for the latest version, as a snapshot when HEAD has
// moved past it. With noSnapshot the marker is dropped.
func LatestRequest(noSnapshot bool) Request {
	if noSnapshot {
		return Request{Policy: KeepOrStripSnapshot}
	}
	return Request{Policy: KeepOrSnapshot}
}

// ReleaseRequest asks for the latest version, or the next one when HEAD has
// moved past it.
func ReleaseRequest() Request {
	return Request{Policy: KeepOrBumpIfDirty}
}

// NextReleaseRequest asks for the version after the latest one.
func NextReleaseRequest() Request {
	return Request{Policy: AlwaysBumpOnce}
}

// PreReleaseRequest asks for the next version marked with the HEAD commit.
func PreReleaseRequest() Request {
	return Request{Policy: AlwaysBumpOnce, PreRelease: true}
}

// CustomRequest uses version as-is.
func CustomRequest(version string) Request {
	return Request{Custom: version}
}

// TagTarget is where a release tag gets created.
type TagTarget string

const (
	TagTargetLocal  TagTarget = "local"
	TagTargetGitHub TagTarget = "github"
)
