package main

import (
	"fmt"
	"strconv"

	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/pkg/stats"
	"github.com/urfave/cli/v2"
)

func describeCmd() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Aliases:   []string{"d"},
		Usage:     "Summarize a list of numbers",
		ArgsUsage: "[number...]",
		Flags:     []cli.Flag{fileFlag(), watchFlag()},
		Action:    withWatch(runDescribeCmd),
	}
}

func runDescribeCmd(c *cli.Context) error {
	values, err := getNumbers(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := stats.Describe(values)
	if err != nil {
		return fmt.Errorf("failed to describe values: %w", err)
	}

	geometric := "n/a"
	if summary.GeometricMean != nil {
		geometric = s.formatFloat(*summary.GeometricMean)
	}
	rows := [][]string{
		{"count", strconv.Itoa(summary.Count)},
		{"sum", s.formatFloat(summary.Sum)},
		{"min", s.formatFloat(summary.Min)},
		{"max", s.formatFloat(summary.Max)},
		{"mean", s.formatFloat(summary.Mean)},
		{"geometric mean", geometric},
		{"harmonic mean", s.formatFloat(summary.HarmonicMean)},
		{"variance", s.formatFloat(summary.Variance)},
		{"std dev", s.formatFloat(summary.StdDev)},
		{"median", s.formatFloat(summary.Median)},
		{"p90", s.formatFloat(summary.P90)},
		{"p99", s.formatFloat(summary.P99)},
	}

	table := output.NewTable("Summary", []string{"Statistic", "Value"}, rows, nil, summary)
	return s.out.Output(table)
}

// slopeResult is the serialized form of the slope command.
type slopeResult struct {
	Points int     `json:"points" yaml:"points"`
	Slope  float64 `json:"slope" yaml:"slope"`
}

func slopeCmd() *cli.Command {
	return &cli.Command{
		Name:  "slope",
		Usage: "Least-squares slope of y against x",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "x",
				Usage:    "x values (comma separated)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "y",
				Usage:    "y values (comma separated)",
				Required: true,
			},
		},
		Action: runSlopeCmd,
	}
}

func runSlopeCmd(c *cli.Context) error {
	xs, err := parseNumbers([]string{c.String("x")})
	if err != nil {
		return fmt.Errorf("--x: %w", err)
	}
	ys, err := parseNumbers([]string{c.String("y")})
	if err != nil {
		return fmt.Errorf("--y: %w", err)
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	slope, err := stats.Slope(xs, ys)
	if err != nil {
		return fmt.Errorf("failed to fit slope: %w", err)
	}

	result := slopeResult{Points: len(xs), Slope: slope}
	rows := [][]string{{strconv.Itoa(result.Points), s.formatFloat(slope)}}
	return s.out.Output(output.NewTable("Least-squares slope", []string{"Points", "Slope"}, rows, nil, result))
}
