package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrReleaseNotFound is returned when upstream does not report a latest release
	// for a repository (unknown repository, no release yet or any non-2xx status)
	ErrReleaseNotFound = goerr.New("latest release not found")

	// ErrIssueNotFound is returned when upstream does not report the requested issue
	ErrIssueNotFound = goerr.New("issue not found")

	// ErrInvalidRepoKey is returned when a repository identifier is not "owner/name"
	ErrInvalidRepoKey = goerr.New("invalid repository format, expected owner/name")

	// ErrInvalidIssueRef is returned when an issue reference can not be parsed
	ErrInvalidIssueRef = goerr.New("invalid issue reference, expected owner/repo/issues/number")

	// ErrEmptyVersion is returned when a comparison entry has no version to compare against
	ErrEmptyVersion = goerr.New("version is empty, expected owner/name:version")
)
