package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/internal/sampling"
	"github.com/panbanda/mut/pkg/config"
	"github.com/panbanda/mut/pkg/dist"
	"github.com/panbanda/mut/pkg/stats"
)

// maxRounds bounds sample_distribution so a single call cannot pin the host.
const maxRounds = 100_000_000

// FormatInput is embedded by every tool input.
type FormatInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// DescribeInput is the input of describe_values.
type DescribeInput struct {
	FormatInput
	Values []float64 `json:"values" jsonschema:"Numbers to summarize."`
}

// SlopeInput is the input of fit_slope.
type SlopeInput struct {
	FormatInput
	X []float64 `json:"x" jsonschema:"Independent variable."`
	Y []float64 `json:"y" jsonschema:"Dependent variable, same length as x."`
}

// MassInput is the input of build_cdf.
type MassInput struct {
	FormatInput
	Mass []float64 `json:"mass" jsonschema:"Non-negative bucket weights, at least one positive."`
}

// SearchInput is the input of search_bucket.
type SearchInput struct {
	MassInput
	Value float64 `json:"value" jsonschema:"Uniform value in [0,1]."`
}

// SampleInput is the input of sample_distribution.
type SampleInput struct {
	MassInput
	Rounds    int     `json:"rounds,omitempty" jsonschema:"Number of draws. Default 1000000."`
	Seed      uint64  `json:"seed,omitempty" jsonschema:"Random seed. Default 3736059631."`
	Workers   int     `json:"workers,omitempty" jsonschema:"Parallel workers, at most 1024. Default one per CPU."`
	Tolerance float64 `json:"tolerance,omitempty" jsonschema:"Largest acceptable per-bucket deviation. Default 0.001."`
}

// SlopeOutput is returned by fit_slope.
type SlopeOutput struct {
	Points int     `json:"points"`
	Slope  float64 `json:"slope"`
}

// CDFOutput is returned by build_cdf.
type CDFOutput struct {
	Mass          []float64 `json:"mass"`
	CDF           []float64 `json:"cdf"`
	Probabilities []float64 `json:"probabilities"`
	Fingerprint   string    `json:"fingerprint"`
}

// SearchOutput is returned by search_bucket.
type SearchOutput struct {
	Value  float64 `json:"value"`
	Bucket int     `json:"bucket"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Helper functions

func getFormat(input FormatInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "yaml", "yml":
		return output.FormatYAML
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatMarkdown {
		text, err := output.Marshal(data, output.FormatTOON)
		if err != nil {
			return "", err
		}
		return "```\n" + text + "```", nil
	}
	return output.Marshal(data, format)
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func handleDescribeValues(ctx context.Context, req *mcp.CallToolRequest, input DescribeInput) (*mcp.CallToolResult, any, error) {
	summary, err := stats.Describe(input.Values)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(summary, getFormat(input.FormatInput))
}

func handleFitSlope(ctx context.Context, req *mcp.CallToolRequest, input SlopeInput) (*mcp.CallToolResult, any, error) {
	slope, err := stats.Slope(input.X, input.Y)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(SlopeOutput{Points: len(input.X), Slope: slope}, getFormat(input.FormatInput))
}

func handleBuildCDF(ctx context.Context, req *mcp.CallToolRequest, input MassInput) (*mcp.CallToolResult, any, error) {
	cdf, err := dist.GenerateCumulativeDistribution(input.Mass)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(CDFOutput{
		Mass:          input.Mass,
		CDF:           cdf,
		Probabilities: cdf.Probabilities(),
		Fingerprint:   fmt.Sprintf("%016x", dist.Fingerprint(cdf)),
	}, getFormat(input.FormatInput))
}

func handleSearchBucket(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	cdf, err := dist.GenerateCumulativeDistribution(input.Mass)
	if err != nil {
		return toolError(err.Error())
	}
	bucket, err := dist.SearchCumulativeDistribution(cdf, input.Value)
	if err != nil {
		return toolError(err.Error())
	}
	lo, hi := cdf.Bounds(bucket)
	return toolResult(SearchOutput{Value: input.Value, Bucket: bucket, Lower: lo, Upper: hi}, getFormat(input.FormatInput))
}

func handleSampleDistribution(ctx context.Context, req *mcp.CallToolRequest, input SampleInput) (*mcp.CallToolResult, any, error) {
	cfg := config.DefaultConfig().Sampling
	if input.Rounds != 0 {
		cfg.Rounds = input.Rounds
	}
	if input.Seed != 0 {
		cfg.Seed = input.Seed
	}
	if input.Workers != 0 {
		cfg.Workers = input.Workers
	}
	if input.Tolerance != 0 {
		cfg.Tolerance = input.Tolerance
	}
	if cfg.Rounds < 0 || cfg.Rounds > maxRounds {
		return toolError(fmt.Sprintf("rounds must be between 1 and %d", maxRounds))
	}
	if cfg.Workers < 0 || cfg.Workers > config.MaxWorkers {
		return toolError(fmt.Sprintf("workers must be between 0 and %d", config.MaxWorkers))
	}

	result, err := sampling.Histogram(ctx, input.Mass, sampling.Options{
		Rounds:    cfg.Rounds,
		Workers:   cfg.Workers,
		Seed:      cfg.Seed,
		Tolerance: cfg.Tolerance,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, getFormat(input.FormatInput))
}
