package main

import (
	"github.com/panbanda/mut/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes mut's statistics
and distribution engine as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "mut": {
        "command": "mut",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - describe_values       Means, variance, standard deviation, quantiles
  - fit_slope             Least-squares slope of y against x
  - build_cdf             Cumulative distribution of a mass vector
  - search_bucket         Bucket a uniform value falls into
  - sample_distribution   Parallel sampling with frequency check`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
