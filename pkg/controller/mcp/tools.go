package mcp

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
)

// GetReleaseInput is the argument of get_release
type GetReleaseInput struct {
	Repository string `json:"repository" jsonschema:"GitHub repository in owner/name format"`
}

// BulkReleasesInput is the argument of bulk_releases
type BulkReleasesInput struct {
	Repositories []string `json:"repositories" jsonschema:"GitHub repositories in owner/name format"`
}

// HistoryEntry is a repository with the version seen earlier
type HistoryEntry struct {
	Repository string `json:"repository" jsonschema:"GitHub repository in owner/name format"`
	Version    string `json:"version" jsonschema:"Version tag to compare against"`
}

// CompareHistoryInput is the argument of compare_history
type CompareHistoryInput struct {
	Entries []HistoryEntry `json:"entries" jsonschema:"Repositories with their earlier versions"`
}

// IssueStatusInput is the argument of issue_status
type IssueStatusInput struct {
	Issues []string `json:"issues" jsonschema:"Issue URLs or owner/repo/issues/number references"`
}

// ReleaseOutput is the latest release of one repository
type ReleaseOutput struct {
	Repository  string `json:"repository"`
	Tag         string `json:"tag"`
	Name        string `json:"name,omitempty"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`
}

// BulkReleasesOutput is the result of bulk_releases
type BulkReleasesOutput struct {
	Releases []*ReleaseOutput `json:"releases"`
	Warnings []*model.Warning `json:"warnings"`
}

// ComparisonOutput is the comparison of one repository
type ComparisonOutput struct {
	Repository        string `json:"repository"`
	HistoricalVersion string `json:"historical_version"`
	CurrentVersion    string `json:"current_version"`
	HasUpdate         bool   `json:"has_update"`
	URL               string `json:"url,omitempty"`
}

// CompareHistoryOutput is the result of compare_history
type CompareHistoryOutput struct {
	Comparisons []*ComparisonOutput `json:"comparisons"`
	Warnings    []*model.Warning    `json:"warnings"`
}

// IssueOutput is the status of one issue
type IssueOutput struct {
	Issue        string `json:"issue"`
	Status       string `json:"status"`
	Name         string `json:"name"`
	PublishedAt  string `json:"published_at"`
	LastActivity string `json:"last_activity"`
	LastComment  string `json:"last_comment"`
}

// IssueStatusOutput is the result of issue_status
type IssueStatusOutput struct {
	Issues   []*IssueOutput   `json:"issues"`
	Warnings []*model.Warning `json:"warnings"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func newReleaseOutput(r *model.LatestRelease) *ReleaseOutput {
	return &ReleaseOutput{
		Repository:  r.Repository.String(),
		Tag:         r.Tag,
		Name:        r.Name,
		URL:         r.URL,
		PublishedAt: formatTime(r.PublishedAt),
	}
}

func (s *Server) getRelease(ctx context.Context, req *sdk.CallToolRequest, input GetReleaseInput) (*sdk.CallToolResult, *ReleaseOutput, error) {
	ctxlog.From(ctx).Debug("MCP tool called", "tool", "get_release", "repository", input.Repository)

	release, err := s.releaseUC.Latest(ctx, input.Repository)
	if err != nil {
		return nil, nil, err
	}
	return nil, newReleaseOutput(release), nil
}

func (s *Server) bulkReleases(ctx context.Context, req *sdk.CallToolRequest, input BulkReleasesInput) (*sdk.CallToolResult, *BulkReleasesOutput, error) {
	ctxlog.From(ctx).Debug("MCP tool called", "tool", "bulk_releases", "repositories", len(input.Repositories))
	if len(input.Repositories) == 0 {
		return nil, nil, goerr.New("no repositories provided")
	}

	releases, warnings := s.releaseUC.LatestAll(ctx, input.Repositories)

	out := &BulkReleasesOutput{
		Releases: make([]*ReleaseOutput, 0, len(releases)),
		Warnings: warnings,
	}
	for _, r := range releases {
		out.Releases = append(out.Releases, newReleaseOutput(r))
	}
	return nil, out, nil
}

func (s *Server) compareHistory(ctx context.Context, req *sdk.CallToolRequest, input CompareHistoryInput) (*sdk.CallToolResult, *CompareHistoryOutput, error) {
	ctxlog.From(ctx).Debug("MCP tool called", "tool", "compare_history", "entries", len(input.Entries))
	if len(input.Entries) == 0 {
		return nil, nil, goerr.New("no entries provided")
	}

	entries := make([]*model.VersionEntry, len(input.Entries))
	for i, e := range input.Entries {
		entries[i] = &model.VersionEntry{Repository: e.Repository, Version: e.Version}
	}

	changes, warnings := s.releaseUC.Compare(ctx, entries)

	out := &CompareHistoryOutput{
		Comparisons: make([]*ComparisonOutput, 0, len(changes)),
		Warnings:    warnings,
	}
	for _, c := range changes {
		out.Comparisons = append(out.Comparisons, &ComparisonOutput{
			Repository:        c.Repository.String(),
			HistoricalVersion: c.PreviousTag,
			CurrentVersion:    c.Tag,
			HasUpdate:         c.Changed,
			URL:               c.URL,
		})
	}
	return nil, out, nil
}

func (s *Server) issueStatus(ctx context.Context, req *sdk.CallToolRequest, input IssueStatusInput) (*sdk.CallToolResult, *IssueStatusOutput, error) {
	ctxlog.From(ctx).Debug("MCP tool called", "tool", "issue_status", "issues", len(input.Issues))
	if len(input.Issues) == 0 {
		return nil, nil, goerr.New("no issues provided")
	}

	statuses, warnings := s.issueUC.FetchStatuses(ctx, input.Issues)

	out := &IssueStatusOutput{
		Issues:   make([]*IssueOutput, 0, len(statuses)),
		Warnings: warnings,
	}
	for _, st := range statuses {
		out.Issues = append(out.Issues, &IssueOutput{
			Issue:        st.Ref,
			Status:       st.State,
			Name:         st.Title,
			PublishedAt:  formatTime(st.CreatedAt),
			LastActivity: formatTime(st.UpdatedAt),
			LastComment:  st.LastComment,
		})
	}
	return nil, out, nil
}
