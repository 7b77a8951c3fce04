package github

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

const commentsPerPage = 100

type client struct {
	githubClient *github.Client
}

type config struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for the GitHub client
type Option func(*config)

// WithToken sets a personal access token for authenticated requests
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithBaseURL points the client to GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new GitHub REST API client
func NewClient(opts ...Option) (interfaces.GitHubClient, error) {
	cfg := &config{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(cfg.httpClient)
	if cfg.token != "" {
		githubClient = githubClient.WithAuthToken(cfg.token)
	}

	if cfg.baseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.baseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse GitHub API URL", goerr.V("url", cfg.baseURL))
		}
		githubClient.BaseURL = u
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// GetLatestRelease fetches the latest published release of a repository
func (c *client) GetLatestRelease(ctx context.Context, repo types.RepoKey) (*model.ReleaseSnapshot, error) {
	logger := ctxlog.From(ctx)

	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, repo.Owner(), repo.Name())
	if err != nil {
		if resp != nil && resp.Response != nil {
			return nil, goerr.Wrap(types.ErrReleaseNotFound, "upstream did not return a latest release",
				goerr.V("repository", repo),
				goerr.V("status", resp.StatusCode),
			)
		}
		return nil, goerr.Wrap(err, "failed to request latest release", goerr.V("repository", repo))
	}

	logger.Debug("Fetched latest release",
		"repository", repo,
		"tag_name", release.GetTagName(),
	)

	return &model.ReleaseSnapshot{
		TagName:     release.GetTagName(),
		DisplayName: release.GetName(),
		PublishedAt: release.GetPublishedAt().Time,
		HTMLURL:     release.GetHTMLURL(),
		Body:        release.GetBody(),
	}, nil
}

// GetIssueStatus fetches an issue and then its comments via comments_url
func (c *client) GetIssueStatus(ctx context.Context, ref *model.IssueRef) (*model.IssueStatus, error) {
	logger := ctxlog.From(ctx)

	issue, resp, err := c.githubClient.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		if resp != nil && resp.Response != nil {
			return nil, goerr.Wrap(types.ErrIssueNotFound, "upstream did not return the issue",
				goerr.V("issue", ref.String()),
				goerr.V("status", resp.StatusCode),
			)
		}
		return nil, goerr.Wrap(err, "failed to request issue", goerr.V("issue", ref.String()))
	}

	status := &model.IssueStatus{
		Ref:         ref.String(),
		State:       issue.GetState(),
		Title:       issue.GetTitle(),
		CreatedAt:   issue.GetCreatedAt().Time,
		UpdatedAt:   issue.GetUpdatedAt().Time,
		LastComment: types.NoComments,
	}

	commentsURL := issue.GetCommentsURL()
	if commentsURL == "" {
		return status, nil
	}

	comments, err := c.fetchComments(ctx, commentsURL)
	if err != nil {
		// A failing comment listing still yields the issue itself
		logger.Warn("Failed to fetch issue comments",
			"issue", ref.String(),
			"error", err,
		)
		return status, nil
	}

	if len(comments) > 0 {
		status.LastComment = comments[len(comments)-1].GetBody()
	}

	return status, nil
}

func (c *client) fetchComments(ctx context.Context, commentsURL string) ([]*github.IssueComment, error) {
	u, err := url.Parse(commentsURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse comments URL", goerr.V("url", commentsURL))
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(commentsPerPage))
	u.RawQuery = q.Encode()

	req, err := c.githubClient.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create comments request", goerr.V("url", commentsURL))
	}

	var comments []*github.IssueComment
	if _, err := c.githubClient.Do(ctx, req, &comments); err != nil {
		return nil, goerr.Wrap(err, "failed to list comments", goerr.V("url", commentsURL))
	}

	return comments, nil
}
