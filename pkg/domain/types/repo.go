package types

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

// NoTag is the previous tag reported for a repository that has no stored tag yet
const NoTag = "N/A"

// RepoKey identifies a tracked repository as "owner/name"
type RepoKey string

// NewRepoKey builds a RepoKey from owner and name
func NewRepoKey(owner, name string) (RepoKey, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)

	if err := validateSegment(owner); err != nil {
		return "", goerr.Wrap(err, "invalid owner", goerr.V("owner", owner))
	}
	if err := validateSegment(name); err != nil {
		return "", goerr.Wrap(err, "invalid repository name", goerr.V("name", name))
	}

	return RepoKey(owner + "/" + name), nil
}

// ParseRepoKey parses "owner/name". Surrounding whitespace is ignored.
func ParseRepoKey(s string) (RepoKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return "", goerr.Wrap(ErrInvalidRepoKey, "unexpected number of path segments", goerr.V("input", s))
	}

	return NewRepoKey(parts[0], parts[1])
}

func validateSegment(s string) error {
	if s == "" {
		return goerr.Wrap(ErrInvalidRepoKey, "empty segment")
	}
	if strings.ContainsAny(s, "/:") {
		return goerr.Wrap(ErrInvalidRepoKey, "segment contains separator")
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return goerr.Wrap(ErrInvalidRepoKey, "segment contains whitespace")
		}
	}
	return nil
}

// Owner returns the owner part of the key
func (k RepoKey) Owner() string {
	owner, _, _ := strings.Cut(string(k), "/")
	return owner
}

// Name returns the repository name part of the key
func (k RepoKey) Name() string {
	_, name, _ := strings.Cut(string(k), "/")
	return name
}

func (k RepoKey) String() string {
	return string(k)
}
