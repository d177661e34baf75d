// Package snapshot correlates live paths with their mirrors inside
// mounted point-in-time volume snapshots.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlindqvist/tracefan/internal/discover"
	"github.com/mlindqvist/tracefan/internal/models"
)

// Root is one mounted snapshot.
type Root struct {
	// ID identifies the snapshot (its directory name under the mount root).
	ID string
	// Path is the directory the snapshot contents are visible under.
	Path string
}

// Mounter brackets the privileged mount/unmount of snapshots around a
// batch. Mounting is an OS-level operation performed outside this
// package; implementations only surface what is (or becomes) mounted.
type Mounter interface {
	// Mount makes the snapshots of the volume identified by qualifier
	// available under mountRoot and returns them.
	Mount(qualifier, mountRoot string) ([]Root, error)
	// Unmount releases everything Mount made available.
	Unmount(mountRoot string) error
}

// PreMounted is a Mounter over snapshot directories the operator has
// already mounted. Mount enumerates them; Unmount is a no-op because
// this process did not create the mounts.
type PreMounted struct {
	Paths []string
}

var _ Mounter = PreMounted{}

// Mount returns one Root per configured path, in configuration order.
// Missing paths are an error: the operator explicitly asked for them.
func (m PreMounted) Mount(_, _ string) ([]Root, error) {
	roots := make([]Root, 0, len(m.Paths))
	for _, p := range m.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("snapshot: stat root %s: %w", p, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("snapshot: root is not a directory: %s", p)
		}
		roots = append(roots, Root{ID: filepath.Base(p), Path: p})
	}
	return roots, nil
}

// Unmount does nothing for pre-mounted roots.
func (m PreMounted) Unmount(string) error { return nil }

// Correlator re-resolves live paths under each mounted snapshot root.
type Correlator struct {
	// Qualifier is the volume prefix live paths are relative to (a
	// drive qualifier like `C:\` or a POSIX mount point like `/`).
	Qualifier string
	Roots     []Root
	Disc      *discover.Discoverer
}

// Stem returns path relative to the correlator's volume qualifier. The
// stem is what gets re-rooted under each snapshot.
func (c *Correlator) Stem(path string) (string, error) {
	rel, err := filepath.Rel(c.Qualifier, path)
	if err != nil {
		return "", fmt.Errorf("snapshot: stem of %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot: %s is outside volume %s", path, c.Qualifier)
	}
	return rel, nil
}

func (c *Correlator) provenance(r Root) models.Provenance {
	return models.Provenance{
		Origin:     models.OriginSnapshot,
		SnapshotID: r.ID,
		MountRoot:  r.Path,
	}
}

// MirrorFile emits one candidate per snapshot whose mirror of livePath
// exists. A missing mirror is expected (the file may postdate the
// snapshot) and produces no candidate and no error.
func (c *Correlator) MirrorFile(livePath string) ([]models.Candidate, error) {
	stem, err := c.Stem(livePath)
	if err != nil {
		return nil, err
	}
	var out []models.Candidate
	for _, r := range c.Roots {
		mirror := filepath.Join(r.Path, stem)
		info, err := os.Stat(mirror)
		if err != nil || info.IsDir() || info.Size() == 0 {
			continue
		}
		out = append(out, models.Candidate{Path: mirror, Provenance: c.provenance(r)})
	}
	return out, nil
}

// MirrorDir re-runs discovery rooted at liveDir's mirror in each
// snapshot. Snapshots without the mirrored directory are skipped.
func (c *Correlator) MirrorDir(liveDir string) ([]models.Candidate, error) {
	stem, err := c.Stem(liveDir)
	if err != nil {
		return nil, err
	}
	var out []models.Candidate
	for _, r := range c.Roots {
		mirror := filepath.Join(r.Path, stem)
		if info, err := os.Stat(mirror); err != nil || !info.IsDir() {
			continue
		}
		found, err := c.Disc.Walk(mirror, c.provenance(r))
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
