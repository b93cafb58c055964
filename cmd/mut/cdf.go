package main

import (
	"fmt"
	"strconv"

	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/pkg/dist"
	"github.com/urfave/cli/v2"
)

// cdfResult is the serialized form of the cdf command.
type cdfResult struct {
	Mass          []float64 `json:"mass" yaml:"mass"`
	CDF           []float64 `json:"cdf" yaml:"cdf"`
	Probabilities []float64 `json:"probabilities" yaml:"probabilities"`
	Fingerprint   string    `json:"fingerprint" yaml:"fingerprint"`
}

func cdfCmd() *cli.Command {
	return &cli.Command{
		Name:      "cdf",
		Usage:     "Build the cumulative distribution of a probability mass vector",
		ArgsUsage: "[mass...]",
		Flags:     []cli.Flag{fileFlag(), watchFlag()},
		Action:    withWatch(runCDFCmd),
	}
}

func runCDFCmd(c *cli.Context) error {
	mass, err := getNumbers(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	cdf, err := dist.GenerateCumulativeDistribution(mass)
	if err != nil {
		return fmt.Errorf("failed to build distribution: %w", err)
	}

	result := cdfResult{
		Mass:          mass,
		CDF:           cdf,
		Probabilities: cdf.Probabilities(),
		Fingerprint:   fmt.Sprintf("%016x", dist.Fingerprint(cdf)),
	}

	rows := make([][]string, len(cdf))
	for i := range cdf {
		lo, hi := cdf.Bounds(i)
		rows[i] = []string{
			strconv.Itoa(i),
			s.formatFloat(mass[i]),
			s.formatFloat(result.Probabilities[i]),
			s.formatFloat(lo),
			s.formatFloat(hi),
		}
	}
	footer := []string{"fingerprint", result.Fingerprint, "", "", ""}
	table := output.NewTable("Cumulative distribution", []string{"Bucket", "Mass", "Probability", "Lower", "Upper"}, rows, footer, result)
	return s.out.Output(table)
}

// searchResult is the serialized form of the search command.
type searchResult struct {
	Value  float64 `json:"value" yaml:"value"`
	Bucket int     `json:"bucket" yaml:"bucket"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find the bucket a uniform value in [0,1] falls into",
		ArgsUsage: "[mass...]",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.Float64Flag{
				Name:     "value",
				Aliases:  []string{"v"},
				Usage:    "Uniform value in [0,1]",
				Required: true,
			},
		},
		Action: runSearchCmd,
	}
}

func runSearchCmd(c *cli.Context) error {
	mass, err := getNumbers(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	cdf, err := dist.GenerateCumulativeDistribution(mass)
	if err != nil {
		return fmt.Errorf("failed to build distribution: %w", err)
	}
	value := c.Float64("value")
	bucket, err := dist.SearchCumulativeDistribution(cdf, value)
	if err != nil {
		return fmt.Errorf("failed to search distribution: %w", err)
	}

	lo, hi := cdf.Bounds(bucket)
	result := searchResult{Value: value, Bucket: bucket, Lower: lo, Upper: hi}
	rows := [][]string{{s.formatFloat(value), strconv.Itoa(bucket), s.formatFloat(lo), s.formatFloat(hi)}}
	return s.out.Output(output.NewTable("Search", []string{"Value", "Bucket", "Lower", "Upper"}, rows, nil, result))
}
