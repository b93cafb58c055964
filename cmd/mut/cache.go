package main

import (
	"fmt"
	"time"

	"github.com/panbanda/mut/internal/cache"
	"github.com/panbanda/mut/internal/output"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the sampling histogram cache",
		Description: `Sampling runs are deterministic for a given distribution, seed, round
count and worker count. With [cache] enabled = true in the config, the sample
command stores each histogram under cache.dir and reuses it on the next
identical run.`,
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number and size of cached histograms",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached histogram",
				Action: runCacheClear,
			},
		},
	}
}

// openCache opens the configured cache directory regardless of
// cache.enabled, so a disabled cache can still be inspected or cleared.
// The directory is not created.
func openCache(s *session) *cache.Cache {
	return cache.Open(s.cfg.Cache.Dir, time.Duration(s.cfg.Cache.TTL)*time.Hour)
}

func runCacheStats(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := openCache(s).GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	rows := [][]string{
		{"dir", stats.Dir},
		{"enabled", fmt.Sprintf("%t", s.cfg.Cache.Enabled)},
		{"entries", fmt.Sprintf("%d", stats.Entries)},
		{"size", fmt.Sprintf("%d bytes", stats.TotalSize)},
		{"oldest", stats.OldestAge.Round(time.Second).String()},
		{"newest", stats.NewestAge.Round(time.Second).String()},
	}
	return s.out.Output(output.NewTable("Histogram cache", []string{"Property", "Value"}, rows, nil, stats))
}

func runCacheClear(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := openCache(s).Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.out.Success("Cleared %s", s.cfg.Cache.Dir)
	return nil
}
