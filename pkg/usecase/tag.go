package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
	"github.com/m-mizutani/tagwatch/pkg/utils/async"
	"github.com/m-mizutani/tagwatch/pkg/utils/errutil"
)

// DefaultConcurrency is the number of release lookups running at once
const DefaultConcurrency = 4

type tagUseCase struct {
	// mu serializes reconciliation passes
	mu sync.Mutex

	githubClient interfaces.GitHubClient
	db           interfaces.Database
	notifier     interfaces.Notifier
	asyncNotify  bool
	concurrency  int
	now          func() time.Time
}

// TagOption configures the tag use case
type TagOption func(*tagUseCase)

// WithNotifier sends changed records of every successful pass to n
func WithNotifier(n interfaces.Notifier) TagOption {
	return func(uc *tagUseCase) {
		uc.notifier = n
	}
}

// WithAsyncNotify makes notification run in background instead of blocking Refresh
func WithAsyncNotify() TagOption {
	return func(uc *tagUseCase) {
		uc.asyncNotify = true
	}
}

// WithConcurrency sets how many release lookups run in parallel. Values below 1 mean 1.
func WithConcurrency(n int) TagOption {
	return func(uc *tagUseCase) {
		uc.concurrency = max(n, 1)
	}
}

// WithClock replaces the time source used for UpdatedAt and pass timestamps
func WithClock(now func() time.Time) TagOption {
	return func(uc *tagUseCase) {
		uc.now = now
	}
}

// NewTag creates a TagUseCase
func NewTag(githubClient interfaces.GitHubClient, db interfaces.Database, opts ...TagOption) interfaces.TagUseCase {
	uc := &tagUseCase{
		githubClient: githubClient,
		db:           db,
		concurrency:  DefaultConcurrency,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type lookupResult struct {
	snapshot *model.ReleaseSnapshot
	err      error
}

// Refresh runs one reconciliation pass over all tracked repositories
func (uc *tagUseCase) Refresh(ctx context.Context) (*model.ReconcileResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	result := &model.ReconcileResult{
		PassID:    types.NewPassID(),
		StartedAt: uc.now(),
		Changes:   model.ChangeRecords{},
		Warnings:  []*model.Warning{},
	}

	logger := ctxlog.From(ctx).With("pass_id", result.PassID)
	ctx = ctxlog.With(ctx, logger)

	repos, err := uc.db.ListRepositories(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories", goerr.V("pass_id", result.PassID))
	}

	stored, err := uc.db.ListTags(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tag history", goerr.V("pass_id", result.PassID))
	}
	records := make(map[types.RepoKey]*model.TagRecord, len(stored))
	for _, r := range stored {
		records[r.Repository] = r
	}

	lookups := uc.lookupAll(ctx, repos)
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "reconciliation interrupted", goerr.V("pass_id", result.PassID))
	}

	var updates []*model.TagRecord
	for i, repo := range repos {
		if err := lookups[i].err; err != nil {
			logger.Warn("Failed to look up latest release", "repository", repo, "error", err)
			result.Warnings = append(result.Warnings, &model.Warning{
				Target:  repo.String(),
				Message: err.Error(),
			})
			continue
		}

		change, update := reconcile(repo, records[repo], lookups[i].snapshot, result.StartedAt)
		result.Changes = append(result.Changes, change)
		if update != nil {
			updates = append(updates, update)
		}
	}

	if len(updates) > 0 {
		if err := uc.db.PutTags(ctx, updates); err != nil {
			return nil, goerr.Wrap(err, "failed to save tag history",
				goerr.V("pass_id", result.PassID),
				goerr.V("records", len(updates)),
			)
		}
	}

	result.FinishedAt = uc.now()
	logger.Info("Reconciliation pass completed",
		"repositories", len(repos),
		"changed", len(result.Changes.Changed()),
		"warnings", len(result.Warnings),
		"written", len(updates),
	)

	uc.notify(ctx, result)
	return result, nil
}

// lookupAll fetches latest releases in parallel. Results are indexed like repos.
func (uc *tagUseCase) lookupAll(ctx context.Context, repos []types.RepoKey) []lookupResult {
	results := make([]lookupResult, len(repos))

	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, repo := range repos {
		eg.Go(func() error {
			snapshot, err := uc.githubClient.GetLatestRelease(ctx, repo)
			results[i] = lookupResult{snapshot: snapshot, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// reconcile compares a fresh snapshot with the stored record. update is nil
// when the stored record already matches.
func reconcile(repo types.RepoKey, existing *model.TagRecord, snapshot *model.ReleaseSnapshot, now time.Time) (*model.ChangeRecord, *model.TagRecord) {
	previous := types.NoTag
	if existing != nil {
		previous = existing.Tag
	}
	changed := previous != snapshot.TagName

	change := &model.ChangeRecord{
		Repository:  repo,
		Tag:         snapshot.TagName,
		PreviousTag: previous,
		Changed:     changed,
		URL:         snapshot.HTMLURL,
	}

	switch {
	case existing == nil:
		return change, &model.TagRecord{
			Repository:  repo,
			Tag:         snapshot.TagName,
			PreviousTag: types.NoTag,
			URL:         snapshot.HTMLURL,
			UpdatedAt:   now,
		}

	case changed:
		return change, &model.TagRecord{
			Repository:  repo,
			Tag:         snapshot.TagName,
			PreviousTag: previous,
			URL:         snapshot.HTMLURL,
			UpdatedAt:   now,
		}

	case existing.URL != snapshot.HTMLURL:
		// same tag, release page moved: keep previous_tag as is
		updated := *existing
		updated.URL = snapshot.HTMLURL
		updated.UpdatedAt = now
		return change, &updated
	}

	return change, nil
}

func (uc *tagUseCase) notify(ctx context.Context, result *model.ReconcileResult) {
	if uc.notifier == nil || len(result.Changes.Changed()) == 0 {
		return
	}

	if uc.asyncNotify {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.Notify(ctx, result)
		})
		return
	}

	if err := uc.notifier.Notify(ctx, result); err != nil {
		errutil.Handle(ctx, "failed to notify changes", err)
	}
}

// LatestTag looks up the current release of repo. Stored history is not read or written.
func (uc *tagUseCase) LatestTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error) {
	snapshot, err := uc.githubClient.GetLatestRelease(ctx, repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up latest release", goerr.V("repository", repo))
	}

	return &model.TagRecord{
		Repository: repo,
		Tag:        snapshot.TagName,
		URL:        snapshot.HTMLURL,
		UpdatedAt:  snapshot.PublishedAt,
	}, nil
}

// History returns all stored tag records
func (uc *tagUseCase) History(ctx context.Context) ([]*model.TagRecord, error) {
	records, err := uc.db.ListTags(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tag history")
	}
	return records, nil
}
