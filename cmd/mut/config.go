package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/mut/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a mut configuration file for syntax errors and invalid values.

Examples:
  mut config validate                  # Validates default config locations
  mut -c mut.toml config validate      # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  mut config show              # Show effective config
  mut -c mut.toml config show  # Show config from specific file`,
				Action: runConfigShow,
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Value: "mut.toml",
						Usage: "Where to write the file",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInit,
			},
		},
	}
}

func loadConfigFromFlags(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

func runConfigValidate(c *cli.Context) error {
	result, err := loadConfigFromFlags(c)
	if err != nil {
		fmt.Fprintln(c.App.ErrWriter, color.RedString("Configuration validation failed:"))
		fmt.Fprintf(c.App.ErrWriter, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		fmt.Fprintln(c.App.Writer, color.GreenString("Configuration valid: %s", result.Source))
	} else {
		fmt.Fprintln(c.App.Writer, color.YellowString("No config file found. Default configuration is valid."))
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadConfigFromFlags(c)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(c.App.Writer, string(content))
	return nil
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("path")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(c.App.Writer, color.GreenString("Created %s", outputPath))
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# mut configuration\n")
	buf.WriteString("# sampling.workers = 0 uses one worker per CPU\n\n")
	buf.Write(content)
	return buf.String(), nil
}
