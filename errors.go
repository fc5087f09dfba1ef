package crom

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when no project config file exists in
	// the directory or any of its ancestors.
	ErrConfigNotFound = errors.New("unable to find project config")

	// ErrRepoNotClean is returned when a command that creates a release
	// runs against a workspace with uncommitted changes.
	ErrRepoNotClean = errors.New("repository has uncommitted changes")

	// ErrArtifactNotFound is returned when an artifact name isn't defined
	// in the project config.
	ErrArtifactNotFound = errors.New("artifact not defined")

	// ErrUnsupportedWriter is returned by writers for formats that can't
	// be updated yet.
	ErrUnsupportedWriter = errors.New("version writer not supported")

	// ErrRemoteUnknown is returned when the origin remote isn't a GitHub URL.
	ErrRemoteUnknown = errors.New("unknown git remote")

	// ErrGitHubTokenMissing is returned when a GitHub target is requested
	// without a token.
	ErrGitHubTokenMissing = errors.New("github token missing")

	// ErrReleaseNotFound is returned when no GitHub release exists for a tag.
	ErrReleaseNotFound = errors.New("github release not found")
)

// ConfigurationError reports an invalid project configuration. It is the
// only error the version engine itself produces; it's raised before any tag
// matching happens.
type ConfigurationError struct {
	// Field is the config key at fault, e.g. "pattern".
	Field string
	// Value is the offending value, when there is one.
	Value string
	// Reason describes what is wrong.
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}
