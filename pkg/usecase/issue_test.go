package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func TestIssueUseCase_FetchStatuses(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client := &mockGitHubClient{
		GetIssueStatusFunc: func(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error) {
			if ref.Number == 404 {
				return nil, types.ErrIssueNotFound
			}
			// slower answers for lower numbers so completion order differs from input order
			time.Sleep(time.Duration(10-ref.Number) * time.Millisecond)
			return &model.IssueStatus{
				Ref:         "https://github.com/" + ref.String(),
				State:       "open",
				Title:       "issue",
				CreatedAt:   created,
				LastComment: types.NoComments,
			}, nil
		},
	}
	uc := usecase.NewIssue(client, 4)

	statuses, warnings := uc.FetchStatuses(context.Background(), []string{
		"https://github.com/octocat/Hello-World/issues/1",
		"octocat/Hello-World/issues/404",
		"github.com/octocat/Spoon-Knife/issues/2",
		"not an issue",
		"octocat/Hello-World/issues/3",
	})

	gt.Array(t, statuses).Length(3)
	gt.Value(t, statuses[0].Ref).Equal("https://github.com/octocat/Hello-World/issues/1")
	gt.Value(t, statuses[1].Ref).Equal("https://github.com/octocat/Spoon-Knife/issues/2")
	gt.Value(t, statuses[2].Ref).Equal("https://github.com/octocat/Hello-World/issues/3")

	gt.Array(t, warnings).Length(2)
	gt.Value(t, warnings[0].Target).Equal("octocat/Hello-World/issues/404")
	gt.String(t, warnings[0].Message).Contains("issue not found")
	gt.Value(t, warnings[1].Target).Equal("not an issue")
}

func TestIssueUseCase_FetchStatus(t *testing.T) {
	client := &mockGitHubClient{
		GetIssueStatusFunc: func(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error) {
			return &model.IssueStatus{Ref: ref.String(), State: "closed", LastComment: "fixed"}, nil
		},
	}
	uc := usecase.NewIssue(client, 0)

	status, err := uc.FetchStatus(context.Background(), &model.IssueRef{Owner: "octocat", Repo: "Hello-World", Number: 7})
	gt.NoError(t, err)
	gt.Value(t, status.State).Equal("closed")
	gt.Value(t, status.LastComment).Equal("fixed")
}
