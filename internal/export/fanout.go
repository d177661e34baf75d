package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mlindqvist/tracefan/internal/batch"
)

// Config enumerates the active sinks. An empty name disables that sink.
type Config struct {
	// Dir is the output directory, created if absent.
	Dir string
	// CSV, TimelineCSV, JSONL, and XHTML are file names inside Dir.
	CSV         string
	TimelineCSV string
	JSONL       string
	XHTML       string
	// SQLitePath is a full path; the database may live outside Dir and
	// accumulate rows across runs.
	SQLitePath string
	// TimeLayout renders timestamps in the operator-facing sinks. The
	// structured-line and sqlite sinks always use MachineTimeLayout.
	TimeLayout string
}

// Fanout owns every open sink for the duration of one batch and
// guarantees their release on every exit path.
type Fanout struct {
	csv      *csvSink
	timeline *timelineSink
	jsonl    *jsonlSink
	xhtml    *xhtmlSink
	sqlite   *sqliteSink
	layout   string
	log      *slog.Logger
}

// Open creates the output directory and opens every configured sink. A
// sink that fails to open is disabled with a warning; the others
// proceed. Returns an error only when no configured sink could open or
// the directory itself cannot be created.
func Open(cfg Config, runID string, log *slog.Logger) (*Fanout, error) {
	if log == nil {
		log = slog.Default()
	}
	layout := cfg.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}
	f := &Fanout{layout: layout, log: log}

	configured := 0
	disable := func(kind, name string, err error) {
		log.Warn("sink disabled", slog.String("sink", kind),
			slog.String("target", name), slog.String("error", err.Error()))
	}

	if cfg.CSV != "" || cfg.TimelineCSV != "" || cfg.JSONL != "" || cfg.XHTML != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("export: create output dir: %w", err)
		}
	}

	if cfg.CSV != "" {
		configured++
		path := filepath.Join(cfg.Dir, cfg.CSV)
		if s, err := openCSV(path); err != nil {
			disable("csv", path, err)
		} else {
			f.csv = s
		}
	}
	if cfg.TimelineCSV != "" {
		configured++
		path := filepath.Join(cfg.Dir, cfg.TimelineCSV)
		if s, err := openTimelineCSV(path); err != nil {
			disable("timeline-csv", path, err)
		} else {
			f.timeline = s
		}
	}
	if cfg.JSONL != "" {
		configured++
		path := filepath.Join(cfg.Dir, cfg.JSONL)
		if s, err := openJSONL(path); err != nil {
			disable("jsonl", path, err)
		} else {
			f.jsonl = s
		}
	}
	if cfg.XHTML != "" {
		configured++
		path := filepath.Join(cfg.Dir, cfg.XHTML)
		if s, err := openXHTML(path); err != nil {
			disable("xhtml", path, err)
		} else {
			f.xhtml = s
		}
	}
	if cfg.SQLitePath != "" {
		configured++
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			disable("sqlite", cfg.SQLitePath, err)
		} else if s, err := openSQLite(cfg.SQLitePath, runID); err != nil {
			disable("sqlite", cfg.SQLitePath, err)
		} else {
			f.sqlite = s
		}
	}

	if configured > 0 && !f.anyOpen() {
		f.Close()
		return nil, errors.New("export: no sink could be opened")
	}
	return f, nil
}

func (f *Fanout) anyOpen() bool {
	return f.csv != nil || f.timeline != nil || f.jsonl != nil || f.xhtml != nil || f.sqlite != nil
}

// WriteReport writes every successfully processed record to every open
// sink in one pass. A write failure for one record on one sink is
// logged and isolated: the record still reaches the other sinks and
// subsequent records are unaffected.
func (f *Fanout) WriteReport(report *batch.Report) {
	for _, p := range report.Successes {
		display := p.Candidate.DisplayPath()
		rec, timeline := Project(p.Artifact, display, f.layout)
		// The machine projection is a re-run with a sortable layout,
		// never a mutation of the shared record.
		machineRec, machineTimeline := Project(p.Artifact, display, MachineTimeLayout)

		if f.csv != nil {
			f.reportWriteErr("csv", display, f.csv.write(rec))
		}
		if f.timeline != nil {
			f.reportWriteErr("timeline-csv", display, f.timeline.write(timeline))
		}
		if f.jsonl != nil {
			f.reportWriteErr("jsonl", display, f.jsonl.write(machineRec))
		}
		if f.xhtml != nil {
			f.reportWriteErr("xhtml", display, f.xhtml.write(rec))
		}
		if f.sqlite != nil {
			f.reportWriteErr("sqlite", display, f.sqlite.write(machineTimeline))
		}
	}
}

func (f *Fanout) reportWriteErr(sink, path string, err error) {
	if err != nil {
		f.log.Warn("record write failed", slog.String("sink", sink),
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

// Close flushes and closes every open sink, best-effort: a failing sink
// does not prevent the others from closing.
func (f *Fanout) Close() error {
	var errs []error
	if f.csv != nil {
		errs = append(errs, f.csv.close())
		f.csv = nil
	}
	if f.timeline != nil {
		errs = append(errs, f.timeline.close())
		f.timeline = nil
	}
	if f.jsonl != nil {
		errs = append(errs, f.jsonl.close())
		f.jsonl = nil
	}
	if f.xhtml != nil {
		errs = append(errs, f.xhtml.close())
		f.xhtml = nil
	}
	if f.sqlite != nil {
		errs = append(errs, f.sqlite.close())
		f.sqlite = nil
	}
	return errors.Join(errs...)
}
