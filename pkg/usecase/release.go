package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

type releaseUseCase struct {
	githubClient interfaces.GitHubClient
	concurrency  int
}

// NewRelease creates a ReleaseUseCase. concurrency below 1 means sequential lookups.
func NewRelease(githubClient interfaces.GitHubClient, concurrency int) interfaces.ReleaseUseCase {
	return &releaseUseCase{
		githubClient: githubClient,
		concurrency:  max(concurrency, 1),
	}
}

// Latest returns the latest release of one repository
func (uc *releaseUseCase) Latest(ctx context.Context, raw string) (*model.LatestRelease, error) {
	repo, err := types.ParseRepoKey(raw)
	if err != nil {
		return nil, err
	}
	return uc.latest(ctx, repo)
}

func (uc *releaseUseCase) latest(ctx context.Context, repo types.RepoKey) (*model.LatestRelease, error) {
	snapshot, err := uc.githubClient.GetLatestRelease(ctx, repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up latest release", goerr.V("repository", repo))
	}
	return model.NewLatestRelease(repo, snapshot), nil
}

// LatestAll resolves every repository in input order
func (uc *releaseUseCase) LatestAll(ctx context.Context, raws []string) ([]*model.LatestRelease, []*model.Warning) {
	type outcome struct {
		release *model.LatestRelease
		err     error
	}
	outcomes := make([]outcome, len(raws))

	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, raw := range raws {
		repo, err := types.ParseRepoKey(raw)
		if err != nil {
			outcomes[i].err = err
			continue
		}

		eg.Go(func() error {
			release, err := uc.latest(ctx, repo)
			outcomes[i] = outcome{release: release, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	logger := ctxlog.From(ctx)
	releases := []*model.LatestRelease{}
	warnings := []*model.Warning{}
	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn("Failed to look up latest release", "repository", raws[i], "error", o.err)
			warnings = append(warnings, &model.Warning{Target: raws[i], Message: o.err.Error()})
			continue
		}
		releases = append(releases, o.release)
	}

	return releases, warnings
}

// Compare looks up every entry in input order. An entry is changed when the
// latest tag differs from its version.
func (uc *releaseUseCase) Compare(ctx context.Context, entries []*model.VersionEntry) (model.ChangeRecords, []*model.Warning) {
	type outcome struct {
		change *model.ChangeRecord
		err    error
	}
	outcomes := make([]outcome, len(entries))

	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, entry := range entries {
		repo, err := types.ParseRepoKey(entry.Repository)
		if err != nil {
			outcomes[i].err = err
			continue
		}
		if entry.Version == "" {
			outcomes[i].err = goerr.Wrap(types.ErrEmptyVersion, "nothing to compare", goerr.V("repository", repo))
			continue
		}

		eg.Go(func() error {
			release, err := uc.latest(ctx, repo)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].change = &model.ChangeRecord{
				Repository:  repo,
				Tag:         release.Tag,
				PreviousTag: entry.Version,
				Changed:     release.Tag != entry.Version,
				URL:         release.URL,
			}
			return nil
		})
	}
	_ = eg.Wait()

	logger := ctxlog.From(ctx)
	changes := model.ChangeRecords{}
	warnings := []*model.Warning{}
	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn("Failed to compare version", "repository", entries[i].Repository, "error", o.err)
			warnings = append(warnings, &model.Warning{Target: entries[i].Repository, Message: o.err.Error()})
			continue
		}
		changes = append(changes, o.change)
	}

	return changes, warnings
}
