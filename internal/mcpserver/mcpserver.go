package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all mut tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all mut tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mut",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcp.StdioTransport{})
}

// RunWithTransport serves on t until ctx is done or the client disconnects.
func (s *Server) RunWithTransport(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

func (s *Server) registerTools() {
	// Descriptive statistics
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe_values",
		Description: describeValues(),
	}, handleDescribeValues)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fit_slope",
		Description: describeSlope(),
	}, handleFitSlope)

	// Distribution engine
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_cdf",
		Description: describeBuildCDF(),
	}, handleBuildCDF)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_bucket",
		Description: describeSearchBucket(),
	}, handleSearchBucket)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sample_distribution",
		Description: describeSampleDistribution(),
	}, handleSampleDistribution)
}
