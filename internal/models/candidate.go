package models

import (
	"path/filepath"
	"strings"
)

// Origin distinguishes where a candidate was discovered.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginSnapshot Origin = "snapshot"
)

// Provenance records where a candidate came from so report paths can be
// rendered against the evidence the operator handed us, not against
// internal mount paths.
type Provenance struct {
	Origin Origin
	// SnapshotID identifies the snapshot for OriginSnapshot candidates.
	SnapshotID string
	// MountRoot is the directory the snapshot is mounted under,
	// including the snapshot id component. Empty for live candidates.
	MountRoot string
	// StreamName is set when the candidate is an alternate data stream
	// carried by its parent file rather than a regular file.
	StreamName string
}

// Live is the provenance of candidates found under the live root.
var Live = Provenance{Origin: OriginLive}

// Candidate is one discovered path (or in-memory stream) queued for
// decoding. Consumed exactly once by the batch processor.
type Candidate struct {
	Path       string
	Provenance Provenance
	// Stream holds the payload for alternate-stream candidates that
	// have no addressable path of their own. Nil for regular files.
	Stream []byte
}

// DisplayPath renders the candidate's path for reports: snapshot
// candidates have the mount root replaced with a SNAPSHOT tag, and
// stream candidates append the stream name.
func (c Candidate) DisplayPath() string {
	p := c.Path
	if c.Provenance.Origin == OriginSnapshot && c.Provenance.MountRoot != "" {
		if rel, err := filepath.Rel(c.Provenance.MountRoot, c.Path); err == nil && !strings.HasPrefix(rel, "..") {
			p = "SNAPSHOT" + string(filepath.Separator) + rel
		}
	}
	if c.Provenance.StreamName != "" {
		p += ":" + c.Provenance.StreamName
	}
	return p
}
