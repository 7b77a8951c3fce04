package interfaces

import (
	"context"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// TagUseCase reconciles tracked repositories against upstream releases
type TagUseCase interface {
	// Refresh runs one reconciliation pass over the whole registry
	Refresh(ctx context.Context) (*model.ReconcileResult, error)

	// LatestTag looks up the latest release without touching stored history
	LatestTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error)

	// History returns stored tag records
	History(ctx context.Context) ([]*model.TagRecord, error)
}

// ReleaseUseCase answers release lookups without reading or writing stored history
type ReleaseUseCase interface {
	// Latest returns the latest release of a repository given as "owner/name"
	Latest(ctx context.Context, raw string) (*model.LatestRelease, error)

	// LatestAll looks up every repository. Results keep input order and
	// failures are reported as warnings.
	LatestAll(ctx context.Context, raws []string) ([]*model.LatestRelease, []*model.Warning)

	// Compare reports whether the latest release of each entry differs from its
	// version. PreviousTag of a record holds the version given by the caller.
	Compare(ctx context.Context, entries []*model.VersionEntry) (model.ChangeRecords, []*model.Warning)
}

// RepositoryUseCase manages the registry of tracked repositories
type RepositoryUseCase interface {
	// Add registers a repository given as "owner/name"
	Add(ctx context.Context, raw string) (types.RepoKey, bool, error)

	// List returns tracked repositories
	List(ctx context.Context) ([]types.RepoKey, error)

	// Import registers every repository listed in a prefill file
	Import(ctx context.Context, path string) (int, []*model.Warning, error)
}

// IssueUseCase fetches issue statuses
type IssueUseCase interface {
	// FetchStatuses returns statuses in input order, skipping failures which are reported as warnings
	FetchStatuses(ctx context.Context, refs []string) ([]*model.IssueStatus, []*model.Warning)

	// FetchStatus returns the status of one issue
	FetchStatus(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error)
}
