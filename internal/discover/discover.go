// Package discover enumerates candidate trace files under one or more
// root directories.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlindqvist/tracefan/internal/models"
)

// StreamLister reports the alternate data streams carried by a file, as
// (name, payload) pairs. The default lister returns nothing; a
// platform-specific implementation can be injected where the filesystem
// supports named streams.
type StreamLister func(path string) ([]Stream, error)

// Stream is one alternate data stream payload.
type Stream struct {
	Name string
	Data []byte
}

// Discoverer walks roots and yields candidates whose names match the
// configured artifact extension.
type Discoverer struct {
	// Extension is matched case-insensitively against file names,
	// including the dot (".pf").
	Extension string
	// Streams lists alternate data streams for matched files. Nil
	// disables stream discovery.
	Streams StreamLister
	Logger  *slog.Logger
}

// New returns a Discoverer for the given artifact extension.
func New(extension string, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{Extension: extension, Logger: logger}
}

// Walk enumerates root and appends one candidate per matching file (plus
// one per alternate stream on matching files) to the returned slice.
// Enumeration is lexical per directory, so the order is stable within a
// run. Inaccessible directories are logged and skipped; symlinked
// subtrees are not followed; files that vanish between enumeration and
// stat, and zero-length files, are dropped.
func (d *Discoverer) Walk(root string, prov models.Provenance) ([]models.Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: root is not a directory: %s", root)
	}

	var out []models.Candidate
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				d.Logger.Warn("skipping inaccessible path", slog.String("path", p))
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			return walkErr
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			// Never recurse through links; a linked file is also skipped
			// since its target will be seen under its real path if it is
			// in scope.
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !d.matches(entry.Name()) {
			return nil
		}
		fi, err := entry.Info()
		if err != nil {
			// Vanished between enumeration and stat.
			d.Logger.Warn("file vanished during enumeration", slog.String("path", p))
			return nil
		}
		if fi.Size() == 0 {
			return nil
		}
		out = append(out, models.Candidate{Path: p, Provenance: prov})
		out = append(out, d.streamCandidates(p, prov)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %s: %w", root, err)
	}
	return out, nil
}

// File yields the candidate for one explicitly named trace file, plus
// one candidate per alternate stream it carries. Unlike Walk it does
// not apply the extension filter: the operator named the file directly.
func (d *Discoverer) File(path string, prov models.Provenance) ([]models.Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("discover: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("discover: %s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("discover: %s is empty", path)
	}
	out := []models.Candidate{{Path: path, Provenance: prov}}
	return append(out, d.streamCandidates(path, prov)...), nil
}

// streamCandidates emits one candidate per alternate stream on path.
func (d *Discoverer) streamCandidates(path string, prov models.Provenance) []models.Candidate {
	if d.Streams == nil {
		return nil
	}
	streams, err := d.Streams(path)
	if err != nil {
		d.Logger.Warn("listing alternate streams failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	var out []models.Candidate
	for _, s := range streams {
		if len(s.Data) == 0 {
			continue
		}
		p := prov
		p.StreamName = s.Name
		out = append(out, models.Candidate{Path: path, Provenance: p, Stream: s.Data})
	}
	return out
}

func (d *Discoverer) matches(name string) bool {
	return strings.EqualFold(filepath.Ext(name), d.Extension)
}
