package mcp

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// Server exposes release and issue lookups as MCP tools
type Server struct {
	releaseUC interfaces.ReleaseUseCase
	issueUC   interfaces.IssueUseCase
	server    *sdk.Server
}

// NewServer creates an MCP server with all tools registered
func NewServer(releaseUC interfaces.ReleaseUseCase, issueUC interfaces.IssueUseCase) *Server {
	s := &Server{
		releaseUC: releaseUC,
		issueUC:   issueUC,
		server: sdk.NewServer(&sdk.Implementation{
			Name:    types.ServiceName,
			Version: types.Version,
		}, nil),
	}

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_release",
		Description: "Get the latest release of a single GitHub repository",
	}, s.getRelease)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "bulk_releases",
		Description: "Get the latest release tags of multiple GitHub repositories concurrently",
	}, s.bulkReleases)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "compare_history",
		Description: "Compare versions seen earlier with the latest releases to detect updates",
	}, s.compareHistory)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "issue_status",
		Description: "Get the state and the last comment of GitHub issues",
	}, s.issueStatus)

	return s
}

// Run serves MCP requests on transport until the client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	ctxlog.From(ctx).Info("MCP server starting")
	if err := s.server.Run(ctx, transport); err != nil {
		return goerr.Wrap(err, "MCP server stopped")
	}
	return nil
}
