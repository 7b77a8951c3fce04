package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// Database is an in-process registry and history store. Contents are lost on exit.
type Database struct {
	mu    sync.Mutex
	repos []types.RepoKey
	tags  map[types.RepoKey]*model.TagRecord
	order []types.RepoKey
}

var _ interfaces.Database = (*Database)(nil)

// New creates an empty in-memory database
func New() *Database {
	return &Database{
		tags: make(map[types.RepoKey]*model.TagRecord),
	}
}

// ListRepositories returns tracked repositories in insertion order
func (d *Database) ListRepositories(ctx context.Context) ([]types.RepoKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	repos := make([]types.RepoKey, len(d.repos))
	copy(repos, d.repos)
	return repos, nil
}

// AddRepository appends repo unless it is already tracked
func (d *Database) AddRepository(ctx context.Context, repo types.RepoKey) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range d.repos {
		if r == repo {
			return false, nil
		}
	}
	d.repos = append(d.repos, repo)
	return true, nil
}

// ListTags returns copies of all stored records in first-stored order
func (d *Database) ListTags(ctx context.Context) ([]*model.TagRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tags := make([]*model.TagRecord, 0, len(d.order))
	for _, repo := range d.order {
		rec := *d.tags[repo]
		tags = append(tags, &rec)
	}
	return tags, nil
}

// GetTag returns a copy of the stored record or nil
func (d *Database) GetTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.tags[repo]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

// PutTags upserts all records under one lock
func (d *Database) PutTags(ctx context.Context, tags []*model.TagRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, tag := range tags {
		if _, ok := d.tags[tag.Repository]; !ok {
			d.order = append(d.order, tag.Repository)
		}
		copied := *tag
		d.tags[tag.Repository] = &copied
	}
	return nil
}
