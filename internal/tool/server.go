// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with all logtally tools registered.
func NewServer(version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "logtally",
		Version: version,
	}, nil)
	mcp.AddTool(srv, MetadataExtractLogNumbers, ExtractLogNumbers)
	return srv
}

// Serve runs srv over stdio until ctx is cancelled or the client disconnects.
func Serve(ctx context.Context, srv *mcp.Server) error {
	slog.InfoContext(ctx, "starting logtally MCP server on stdio")
	err := srv.Run(ctx, &mcp.StdioTransport{})
	slog.InfoContext(ctx, "MCP server stopped")
	return err
}
