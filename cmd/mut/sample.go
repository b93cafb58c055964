package main

import (
	"fmt"
	"time"

	"github.com/panbanda/mut/internal/cache"
	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/internal/progress"
	"github.com/panbanda/mut/internal/sampling"
	"github.com/urfave/cli/v2"
)

func sampleCmd() *cli.Command {
	return &cli.Command{
		Name:      "sample",
		Usage:     "Draw many samples and compare bucket frequencies with the mass vector",
		ArgsUsage: "[mass...]",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"n"},
				Usage:   "Number of draws (default from config)",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed (default from config)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Parallel workers, 0 for one per CPU (default from config)",
			},
			&cli.Float64Flag{
				Name:  "tolerance",
				Usage: "Largest acceptable per-bucket deviation (default from config)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Always draw, even when the histogram cache is enabled",
			},
		},
		Action: runSampleCmd,
	}
}

func runSampleCmd(c *cli.Context) error {
	mass, err := getNumbers(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	sc := s.cfg.Sampling
	opts := sampling.Options{
		Rounds:    sc.Rounds,
		Workers:   sc.Workers,
		Seed:      sc.Seed,
		Tolerance: sc.Tolerance,
		Precision: s.cfg.Output.Precision,
	}

	enabled := s.cfg.Cache.Enabled && !c.Bool("no-cache")
	hc, err := cache.New(s.cfg.Cache.Dir, time.Duration(s.cfg.Cache.TTL)*time.Hour, enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if hc.Enabled() {
		opts.Cache = hc
	}

	var tracker *progress.Tracker
	if !c.Bool("no-progress") && s.out.Format() == output.FormatText {
		tracker = progress.NewTracker(c.App.ErrWriter, "Sampling", int64(sc.Rounds))
		opts.OnProgress = tracker.Add
	}

	result, err := sampling.Histogram(c.Context, mass, opts)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to sample distribution: %w", err)
	}

	if result.Cached && c.Bool("verbose") {
		s.out.Info("Reused cached histogram")
	}
	if err := s.out.Output(result); err != nil {
		return err
	}
	if !result.Pass {
		for b, d := range result.Deviation {
			if d > result.Tolerance {
				s.out.Warning("bucket %d deviates by %g (expected %g, observed %g)", b, d, result.Expected[b], result.Observed[b])
			}
		}
		return fmt.Errorf("max deviation %g exceeds tolerance %g", result.MaxDeviation, result.Tolerance)
	}
	return nil
}
