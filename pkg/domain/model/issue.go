package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// IssueRef points to a single issue
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// ParseIssueRef accepts "https://github.com/owner/repo/issues/N",
// "github.com/owner/repo/issues/N" and "owner/repo/issues/N"
func ParseIssueRef(s string) (*IssueRef, error) {
	raw := strings.TrimSpace(s)
	path := raw

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, goerr.Wrap(types.ErrInvalidIssueRef, "failed to parse issue URL", goerr.V("input", s), goerr.V("cause", err.Error()))
		}
		path = u.Path
	} else if host, rest, ok := strings.Cut(raw, "/"); ok && strings.Contains(host, ".") {
		path = rest
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 || parts[2] != "issues" {
		return nil, goerr.Wrap(types.ErrInvalidIssueRef, "unexpected issue path", goerr.V("input", s))
	}

	key, err := types.NewRepoKey(parts[0], parts[1])
	if err != nil {
		return nil, goerr.Wrap(types.ErrInvalidIssueRef, "invalid repository in issue reference", goerr.V("input", s), goerr.V("cause", err.Error()))
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return nil, goerr.Wrap(types.ErrInvalidIssueRef, "invalid issue number", goerr.V("input", s))
	}

	return &IssueRef{
		Owner:  key.Owner(),
		Repo:   key.Name(),
		Number: number,
	}, nil
}

// Repository returns the key of the repository owning the issue
func (x *IssueRef) Repository() types.RepoKey {
	return types.RepoKey(x.Owner + "/" + x.Repo)
}

func (x *IssueRef) String() string {
	return x.Owner + "/" + x.Repo + "/issues/" + strconv.Itoa(x.Number)
}

// IssueStatus is the current state of an issue with its most recent comment
type IssueStatus struct {
	Ref         string    `json:"issue"`
	State       string    `json:"status"`
	Title       string    `json:"name"`
	CreatedAt   time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"last_activity"`
	LastComment string    `json:"last_comment"`
}
