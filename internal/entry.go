// Package internal wires the batch pipeline together: environment
// checks, snapshot mounting, discovery, processing, and export.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mlindqvist/tracefan/internal/batch"
	"github.com/mlindqvist/tracefan/internal/classify"
	"github.com/mlindqvist/tracefan/internal/decoder"
	"github.com/mlindqvist/tracefan/internal/dedup"
	"github.com/mlindqvist/tracefan/internal/discover"
	"github.com/mlindqvist/tracefan/internal/export"
	"github.com/mlindqvist/tracefan/internal/models"
	"github.com/mlindqvist/tracefan/internal/render"
	"github.com/mlindqvist/tracefan/internal/snapshot"
)

// isElevated reports whether the process can perform privileged
// snapshot operations. Overridable in tests.
var isElevated = func() bool {
	return os.Geteuid() == 0
}

// Run executes one batch with the given options. Environment errors
// (missing target, missing privileges) return before any snapshot is
// mounted or any output file is created; per-candidate and per-sink
// failures are isolated inside the batch and reported in the summary.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	if app.decoder == nil {
		app.decoder = decoder.JSON{}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}

	// Structured logs go to stderr; stdout carries the interactive
	// narration.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	// Fail fast on environment problems before acquiring anything.
	target, targetIsDir, err := resolveTarget(cfg)
	if err != nil {
		return err
	}

	mounter := app.mounter
	var roots []snapshot.Root
	if cfg.Snapshots.Enabled {
		if !isElevated() {
			return fmt.Errorf("snapshot processing requires elevated privileges")
		}
		if mounter == nil {
			mounter = snapshot.PreMounted{Paths: cfg.Snapshots.Roots}
		}
		roots, err = mounter.Mount(cfg.Snapshots.Qualifier, cfg.Snapshots.MountRoot)
		if err != nil {
			return fmt.Errorf("mount snapshots: %w", err)
		}
		defer func() {
			if err := mounter.Unmount(cfg.Snapshots.MountRoot); err != nil {
				logger.Warn("unmount failed", slog.String("error", err.Error()))
			}
		}()
		logger.Info("snapshots mounted", slog.Int("count", len(roots)))
	}

	disc := discover.New(cfg.Scan.Extension, logger)

	var candidates []models.Candidate
	if targetIsDir {
		candidates, err = disc.Walk(target, models.Live)
	} else {
		candidates, err = disc.File(target, models.Live)
	}
	if err != nil {
		return err
	}

	if len(roots) > 0 {
		corr := &snapshot.Correlator{
			Qualifier: cfg.Snapshots.Qualifier,
			Roots:     roots,
			Disc:      disc,
		}
		var mirrored []models.Candidate
		if targetIsDir {
			mirrored, err = corr.MirrorDir(target)
		} else {
			mirrored, err = corr.MirrorFile(target)
		}
		if err != nil {
			logger.Warn("snapshot correlation incomplete", slog.String("error", err.Error()))
		}
		candidates = append(candidates, mirrored...)
	}

	logger.Info("discovery complete", slog.Int("candidates", len(candidates)))

	cls := classify.New(cfg.Scan.Keywords)
	renderer := render.New(app.stdout, cls, cfg.Export.TimeLayout, cfg.App.Quiet)

	proc := &batch.Processor{
		Dedup:    dedup.New(cfg.Scan.Dedup),
		Decoder:  app.decoder,
		Observer: renderer.Record,
		Logger:   logger,
	}
	report := proc.Run(candidates)

	exportErr := writeReports(cfg, report, logger)
	renderer.Summary(report)

	logger.Info("batch finished",
		slog.String("run_id", report.RunID),
		slog.Int("processed", len(report.Successes)),
		slog.Int("attempted", report.Attempted),
		slog.Int("failed", len(report.Failures)),
		slog.Duration("elapsed", report.Elapsed))

	return exportErr
}

func writeReports(cfg *Config, report *batch.Report, logger *slog.Logger) error {
	fan, err := export.Open(export.Config{
		Dir:         cfg.Export.Dir,
		CSV:         cfg.Export.CSV,
		TimelineCSV: cfg.Export.TimelineCSV,
		JSONL:       cfg.Export.JSONL,
		XHTML:       cfg.Export.XHTML,
		SQLitePath:  cfg.Export.SQLitePath,
		TimeLayout:  cfg.Export.TimeLayout,
	}, report.RunID, logger)
	if err != nil {
		return fmt.Errorf("open sinks: %w", err)
	}
	defer func() {
		if err := fan.Close(); err != nil {
			logger.Warn("closing sinks", slog.String("error", err.Error()))
		}
	}()

	fan.WriteReport(report)
	return nil
}

// resolveTarget checks that exactly one scan target is configured and
// that it exists with the right kind.
func resolveTarget(cfg *Config) (string, bool, error) {
	file, dir := cfg.Scan.File, cfg.Scan.Dir
	switch {
	case file == "" && dir == "":
		return "", false, fmt.Errorf("one of scan.file or scan.dir is required")
	case file != "" && dir != "":
		return "", false, fmt.Errorf("scan.file and scan.dir are mutually exclusive")
	case file != "":
		info, err := os.Stat(file)
		if err != nil {
			return "", false, fmt.Errorf("scan target: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("scan.file %s is a directory", file)
		}
		return file, false, nil
	default:
		info, err := os.Stat(dir)
		if err != nil {
			return "", false, fmt.Errorf("scan target: %w", err)
		}
		if !info.IsDir() {
			return "", false, fmt.Errorf("scan.dir %s is not a directory", dir)
		}
		return dir, true, nil
	}
}
