package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/pkg/config"
	"github.com/panbanda/mut/pkg/watch"
	"github.com/urfave/cli/v2"
)

// fileFlag is shared by every command that reads a number list.
func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "file",
		Usage: "Read numbers from a file (whitespace or comma separated, - for stdin)",
	}
}

func watchFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Run again whenever --file changes",
	}
}

// withWatch runs action once and, with --watch, again after every change
// to --file until interrupted. Errors of individual runs are reported but
// do not stop the watch.
func withWatch(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if !c.Bool("watch") {
			return action(c)
		}
		path := c.String("file")
		if path == "" || path == "-" {
			return errors.New("--watch needs --file with a path")
		}

		w, err := watch.NewWatcher(path, 0)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		defer w.Stop()
		w.SetOutput(c.App.ErrWriter)

		msgs := output.NewWriterFormatter(output.FormatText, c.App.Writer, c.App.ErrWriter, !c.Bool("no-color"))
		report := func() {
			if err := action(c); err != nil {
				msgs.Error("%v", err)
			}
		}
		w.SetCallback(func(string) { report() })

		report()
		if err := w.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// session bundles the effective configuration and the output formatter
// of one command invocation.
type session struct {
	cfg *config.Config
	out *output.Formatter
}

func (s *session) Close() error {
	return s.out.Close()
}

// newSession loads configuration, applies flag overrides and opens the
// formatter. Overrides are applied before validation.
func newSession(c *cli.Context) (*session, error) {
	opts := []config.LoadOption{config.WithOverrides(func(cfg *config.Config) {
		applyFlagOverrides(c, cfg)
	})}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	cfg := result.Config
	if !cfg.Output.Color {
		color.NoColor = true
	}

	format := output.ParseFormat(cfg.Output.Format)
	var out *output.Formatter
	if path := c.String("output"); path != "" {
		out, err = output.NewFormatter(format, path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open output file: %w", err)
		}
	} else {
		out = output.NewWriterFormatter(format, c.App.Writer, c.App.ErrWriter, cfg.Output.Color)
	}

	s := &session{cfg: cfg, out: out}
	if c.Bool("verbose") {
		if result.Source != "" {
			out.Info("Using configuration from %s", result.Source)
		} else {
			out.Info("Using default configuration")
		}
	}
	return s, nil
}

// applyFlagOverrides copies every flag the user set onto cfg. Sampling
// flags only exist on the sample command.
func applyFlagOverrides(c *cli.Context, cfg *config.Config) {
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("precision") {
		cfg.Output.Precision = c.Int("precision")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.IsSet("rounds") {
		cfg.Sampling.Rounds = c.Int("rounds")
	}
	if c.IsSet("seed") {
		cfg.Sampling.Seed = c.Uint64("seed")
	}
	if c.IsSet("workers") {
		cfg.Sampling.Workers = c.Int("workers")
	}
	if c.IsSet("tolerance") {
		cfg.Sampling.Tolerance = c.Float64("tolerance")
	}
}

// formatFloat renders v with the configured precision.
func (s *session) formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', s.cfg.Output.Precision, 64)
}

// getNumbers collects numbers from positional args and from --file.
func getNumbers(c *cli.Context) ([]float64, error) {
	values, err := parseNumbers(c.Args().Slice())
	if err != nil {
		return nil, err
	}

	if path := c.String("file"); path != "" {
		var r io.Reader = c.App.Reader
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()
			r = f
		}
		more, err := readNumbers(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		values = append(values, more...)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no numbers given (pass them as arguments or with --file)")
	}
	return values, nil
}

// parseNumbers parses fields that may themselves hold comma separated lists.
func parseNumbers(fields []string) ([]float64, error) {
	var values []float64
	for _, field := range fields {
		for _, tok := range strings.FieldsFunc(field, isSeparator) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", tok)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// readNumbers reads whitespace or comma separated numbers. Lines starting
// with # are comments.
func readNumbers(r io.Reader) ([]float64, error) {
	var values []float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		more, err := parseNumbers([]string{line})
		if err != nil {
			return nil, err
		}
		values = append(values, more...)
	}
	return values, scanner.Err()
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
