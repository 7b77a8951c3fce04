package interfaces

import (
	"context"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// Database stores the tracked repositories and their tag history
type Database interface {
	RepositoryRegistry
	HistoryStore
}

// RepositoryRegistry is the list of tracked repositories
type RepositoryRegistry interface {
	// ListRepositories returns tracked repositories in insertion order
	ListRepositories(ctx context.Context) ([]types.RepoKey, error)

	// AddRepository registers a repository. added is false when it was already tracked.
	AddRepository(ctx context.Context, repo types.RepoKey) (added bool, err error)
}

// HistoryStore keeps the last observed tag of each repository
type HistoryStore interface {
	// ListTags returns all stored tag records
	ListTags(ctx context.Context) ([]*model.TagRecord, error)

	// GetTag returns nil, nil when no record exists
	GetTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error)

	// PutTags upserts all records at once. Either all of them are stored or none.
	PutTags(ctx context.Context, tags []*model.TagRecord) error
}

// Notifier delivers changed records to an outside channel
type Notifier interface {
	Notify(ctx context.Context, result *model.ReconcileResult) error
}
