package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mlindqvist/tracefan/internal"
	pkgconfig "github.com/mlindqvist/tracefan/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("batch error: %w", err)
	}

	return nil
}

// buildConfig loads the config file (when given) and layers the flag
// overrides on top.
func buildConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if configPath := cmd.String("config"); configPath != "" {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Flags override file values.
	if v := cmd.String("file"); v != "" {
		cfg.Scan.File = v
	}
	if v := cmd.String("dir"); v != "" {
		cfg.Scan.Dir = v
	}
	if v := cmd.StringSlice("keywords"); len(v) > 0 {
		cfg.Scan.Keywords = append(cfg.Scan.Keywords, v...)
	}
	if cmd.Bool("no-dedup") {
		cfg.Scan.Dedup = false
	}
	if cmd.Bool("snapshots") {
		cfg.Snapshots.Enabled = true
	}
	if v := cmd.StringSlice("snapshot-root"); len(v) > 0 {
		cfg.Snapshots.Roots = append(cfg.Snapshots.Roots, v...)
	}
	if v := cmd.String("output-dir"); v != "" {
		cfg.Export.Dir = v
	}
	if v := cmd.String("csv"); v != "" {
		cfg.Export.CSV = v
	}
	if v := cmd.String("timeline-csv"); v != "" {
		cfg.Export.TimelineCSV = v
	}
	if v := cmd.String("json"); v != "" {
		cfg.Export.JSONL = v
	}
	if v := cmd.String("html"); v != "" {
		cfg.Export.XHTML = v
	}
	if v := cmd.String("sqlite"); v != "" {
		cfg.Export.SQLitePath = v
	}
	if v := cmd.String("time-format"); v != "" {
		cfg.Export.TimeLayout = v
	}
	if cmd.Bool("quiet") {
		cfg.App.Quiet = true
	}
	if cmd.Bool("debug") {
		cfg.App.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "tracefan",
		Usage:  "Batch-process forensic trace files into CSV, timeline, JSON, and XHTML reports",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("TRACEFAN_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Process a single trace file",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Recursively process trace files under a directory",
			},
			&cli.StringSliceFlag{
				Name:    "keywords",
				Aliases: []string{"k"},
				Usage:   "Keywords to highlight in interactive output (repeatable)",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory report files are written to",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Tabular report file name",
			},
			&cli.StringFlag{
				Name:  "timeline-csv",
				Usage: "Tabular timeline report file name",
			},
			&cli.StringFlag{
				Name:  "json",
				Usage: "Line-delimited JSON report file name",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "XHTML report file name",
			},
			&cli.StringFlag{
				Name:  "sqlite",
				Usage: "SQLite timeline database path",
			},
			&cli.StringFlag{
				Name:  "time-format",
				Usage: "Go time layout for report timestamps",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress per-record console output",
			},
			&cli.BoolFlag{
				Name:  "no-dedup",
				Usage: "Process duplicate files instead of suppressing them",
			},
			&cli.BoolFlag{
				Name:  "snapshots",
				Usage: "Also process mirrored paths inside mounted snapshots",
			},
			&cli.StringSliceFlag{
				Name:  "snapshot-root",
				Usage: "Mounted snapshot root directory (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
