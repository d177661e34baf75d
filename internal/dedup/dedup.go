// Package dedup suppresses candidates whose content has already been
// seen this run.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/mlindqvist/tracefan/internal/models"
)

// Deduplicator tracks content digests seen within one batch run.
// First-seen wins: the caller must feed candidates in stable traversal
// order. Disabled instances accept everything.
type Deduplicator struct {
	enabled bool
	seen    map[string]struct{}
}

// New returns a Deduplicator. When enabled is false, Accept always
// returns true without reading the candidate.
func New(enabled bool) *Deduplicator {
	return &Deduplicator{
		enabled: enabled,
		seen:    make(map[string]struct{}),
	}
}

// Accept reports whether the candidate's content has not been seen
// before this run. A digest failure (unreadable file) is a hard
// per-candidate error for the caller to record.
func (d *Deduplicator) Accept(c models.Candidate) (bool, error) {
	if !d.enabled {
		return true, nil
	}
	digest, err := d.digest(c)
	if err != nil {
		return false, err
	}
	if _, dup := d.seen[digest]; dup {
		return false, nil
	}
	d.seen[digest] = struct{}{}
	return true, nil
}

func (d *Deduplicator) digest(c models.Candidate) (string, error) {
	h := sha256.New()
	if c.Stream != nil {
		h.Write(c.Stream)
	} else {
		f, err := os.Open(c.Path)
		if err != nil {
			return "", fmt.Errorf("dedup: open %s: %w", c.Path, err)
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("dedup: read %s: %w", c.Path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
