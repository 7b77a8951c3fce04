package mcp

import sdk "github.com/modelcontextprotocol/go-sdk/mcp"

func (s *Server) SDKServer() *sdk.Server {
	return s.server
}
