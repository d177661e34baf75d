// Package models defines the core types that flow through the batch
// pipeline: discovery candidates, decoded artifacts, and the batch report.
package models

import "time"

// Volume describes one volume referenced by a trace artifact.
type Volume struct {
	DeviceName   string
	Serial       string
	Created      time.Time
	Directories  []string
	FileRefCount int
}

// Artifact is the normalized form of one decoded trace file. It is
// owned by the pipeline once returned by a decoder and is never
// mutated afterwards, only read.
type Artifact struct {
	// SourcePath is the path the artifact was decoded from. For
	// snapshot candidates this is the mount-internal path; display
	// rendering is handled by the candidate's provenance.
	SourcePath     string
	SourceCreated  time.Time
	SourceModified time.Time
	SourceAccessed time.Time

	ExecutableName string
	Hash           string
	Size           int64
	Version        string

	RunCount int
	// RunTimes is ordered most-recent first.
	RunTimes []time.Time

	Volumes   []Volume
	FilePaths []string

	// PartialDecode is set when the structure was recognized but some
	// fields could not be fully parsed.
	PartialDecode bool
}

// LastRun returns the most recent run time, or the zero time when the
// artifact records no runs.
func (a *Artifact) LastRun() time.Time {
	if len(a.RunTimes) == 0 {
		return time.Time{}
	}
	return a.RunTimes[0]
}
