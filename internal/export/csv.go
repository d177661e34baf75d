package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{
	"SourceFile", "SourceCreated", "SourceModified", "SourceAccessed",
	"ExecutableName", "Hash", "Size", "Version", "RunCount", "LastRun",
	"Volume0Name", "Volume0Serial", "Volume0Created",
	"Volume1Name", "Volume1Serial", "Volume1Created", "VolumeNote",
	"Directories", "FilesLoaded", "PartialDecode",
}

var timelineHeader = []string{"RunTime", "ExecutableName", "SourceFile"}

// csvSink writes one row per artifact to a tabular file.
type csvSink struct {
	f *os.File
	w *csv.Writer
}

func openCSV(path string) (*csvSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	s := &csvSink{f: f, w: csv.NewWriter(f)}
	if err := s.w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: write header %s: %w", path, err)
	}
	return s, nil
}

func (s *csvSink) write(r Record) error {
	return s.w.Write([]string{
		r.SourceFile, r.SourceCreated, r.SourceModified, r.SourceAccessed,
		r.ExecutableName, r.Hash, strconv.FormatInt(r.Size, 10), r.Version,
		strconv.Itoa(r.RunCount), r.LastRun,
		r.Volume0Name, r.Volume0Serial, r.Volume0Created,
		r.Volume1Name, r.Volume1Serial, r.Volume1Created, r.VolumeNote,
		r.Directories, r.FilesLoaded, strconv.FormatBool(r.PartialDecode),
	})
}

func (s *csvSink) close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	if err := s.f.Close(); err != nil {
		return err
	}
	return flushErr
}

// timelineSink writes one row per run timestamp to a tabular file.
type timelineSink struct {
	f *os.File
	w *csv.Writer
}

func openTimelineCSV(path string) (*timelineSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", path, err)
	}
	s := &timelineSink{f: f, w: csv.NewWriter(f)}
	if err := s.w.Write(timelineHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: write header %s: %w", path, err)
	}
	return s, nil
}

func (s *timelineSink) write(rows []TimelineRecord) error {
	for _, t := range rows {
		if err := s.w.Write([]string{t.RunTime, t.Executable, t.SourceFile}); err != nil {
			return err
		}
	}
	return nil
}

func (s *timelineSink) close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	if err := s.f.Close(); err != nil {
		return err
	}
	return flushErr
}
