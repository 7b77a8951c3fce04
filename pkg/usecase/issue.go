package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
)

type issueUseCase struct {
	githubClient interfaces.GitHubClient
	concurrency  int
}

// NewIssue creates an IssueUseCase. concurrency below 1 means sequential lookups.
func NewIssue(githubClient interfaces.GitHubClient, concurrency int) interfaces.IssueUseCase {
	return &issueUseCase{
		githubClient: githubClient,
		concurrency:  max(concurrency, 1),
	}
}

// FetchStatus returns the status of one issue
func (uc *issueUseCase) FetchStatus(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error) {
	status, err := uc.githubClient.GetIssueStatus(ctx, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch issue status", goerr.V("issue", ref.String()))
	}
	return status, nil
}

// FetchStatuses resolves every reference in input order. Unparsable
// references and failed lookups are reported as warnings.
func (uc *issueUseCase) FetchStatuses(ctx context.Context, refs []string) ([]*model.IssueStatus, []*model.Warning) {
	type outcome struct {
		status *model.IssueStatus
		err    error
	}
	outcomes := make([]outcome, len(refs))

	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, raw := range refs {
		ref, err := model.ParseIssueRef(raw)
		if err != nil {
			outcomes[i].err = err
			continue
		}

		eg.Go(func() error {
			status, err := uc.FetchStatus(ctx, ref)
			outcomes[i] = outcome{status: status, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	logger := ctxlog.From(ctx)
	statuses := []*model.IssueStatus{}
	warnings := []*model.Warning{}
	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn("Failed to fetch issue status", "issue", refs[i], "error", o.err)
			warnings = append(warnings, &model.Warning{Target: refs[i], Message: o.err.Error()})
			continue
		}
		statuses = append(statuses, o.status)
	}

	return statuses, warnings
}
