package interfaces

import (
	"context"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// GetLatestRelease returns the latest release of the repository.
	// Any non-2xx response is reported as types.ErrReleaseNotFound.
	GetLatestRelease(ctx context.Context, repo types.RepoKey) (*model.ReleaseSnapshot, error)

	// GetIssueStatus returns the state of the issue and its last comment
	GetIssueStatus(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error)
}
