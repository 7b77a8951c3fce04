package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
	"github.com/m-mizutani/tagwatch/pkg/infra/memory"
)

type mockGitHubClient struct {
	mu                   sync.Mutex
	GetLatestReleaseFunc func(ctx context.Context, repo types.RepoKey) (*model.ReleaseSnapshot, error)
	GetIssueStatusFunc   func(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error)
	releaseCalls         []types.RepoKey
}

func (m *mockGitHubClient) GetLatestRelease(ctx context.Context, repo types.RepoKey) (*model.ReleaseSnapshot, error) {
	m.mu.Lock()
	m.releaseCalls = append(m.releaseCalls, repo)
	m.mu.Unlock()

	if m.GetLatestReleaseFunc != nil {
		return m.GetLatestReleaseFunc(ctx, repo)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHubClient) GetIssueStatus(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error) {
	if m.GetIssueStatusFunc != nil {
		return m.GetIssueStatusFunc(ctx, ref)
	}
	return nil, errors.New("mock not configured")
}

// upstream returns a lookup answering from a mutable tag table
type upstream struct {
	mu   sync.Mutex
	tags map[types.RepoKey]string
}

func newUpstream(tags map[types.RepoKey]string) *upstream {
	return &upstream{tags: tags}
}

func (u *upstream) set(repo types.RepoKey, tag string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tags[repo] = tag
}

func (u *upstream) lookup(ctx context.Context, repo types.RepoKey) (*model.ReleaseSnapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	tag, ok := u.tags[repo]
	if !ok {
		return nil, types.ErrReleaseNotFound
	}
	return &model.ReleaseSnapshot{
		TagName: tag,
		HTMLURL: "https://github.com/" + repo.String() + "/releases/tag/" + tag,
	}, nil
}

// failingDatabase breaks PutTags on an otherwise working memory database
type failingDatabase struct {
	*memory.Database
}

func (d *failingDatabase) PutTags(ctx context.Context, tags []*model.TagRecord) error {
	return errors.New("disk full")
}

type mockNotifier struct {
	mu      sync.Mutex
	results []*model.ReconcileResult
	err     error
	called  chan struct{}
}

func (m *mockNotifier) Notify(ctx context.Context, result *model.ReconcileResult) error {
	m.mu.Lock()
	m.results = append(m.results, result)
	m.mu.Unlock()
	if m.called != nil {
		m.called <- struct{}{}
	}
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
