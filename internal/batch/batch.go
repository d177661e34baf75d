// Package batch drains the candidate sequence through dedup and decode,
// isolating every per-candidate failure.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mlindqvist/tracefan/internal/decoder"
	"github.com/mlindqvist/tracefan/internal/dedup"
	"github.com/mlindqvist/tracefan/internal/models"
)

// Failure records one candidate that did not decode.
type Failure struct {
	Path   string
	Reason string
}

// Processed pairs a decoded artifact with the candidate it came from,
// so provenance survives to export.
type Processed struct {
	Candidate models.Candidate
	Artifact  *models.Artifact
}

// Report accumulates the outcome of one batch run. Created at batch
// start, mutated only by the Processor, read once at batch end.
type Report struct {
	RunID     string
	Successes []Processed
	Failures  []Failure
	Attempted int
	Elapsed   time.Duration
}

// NewReport returns an empty report with a fresh run identifier.
func NewReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Observer is invoked for every successfully decoded candidate. It is
// display-only and must not influence processing or export.
type Observer func(Processed)

// Processor orchestrates dedup and decode for every candidate. One
// candidate's failure never stops the rest of the batch.
type Processor struct {
	Dedup    *dedup.Deduplicator
	Decoder  decoder.Decoder
	Observer Observer
	Logger   *slog.Logger
}

// Run drains candidates into a fresh report. Terminal states per
// candidate: rejected (duplicate), success, unsupported format, or
// error; none are retried.
func (p *Processor) Run(candidates []models.Candidate) *Report {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	report := NewReport()
	start := time.Now()

	for _, c := range candidates {
		display := c.DisplayPath()

		ok, err := p.Dedup.Accept(c)
		if err != nil {
			report.Attempted++
			report.Failures = append(report.Failures, Failure{Path: display, Reason: err.Error()})
			continue
		}
		if !ok {
			log.Debug("duplicate content suppressed", slog.String("path", display))
			continue
		}
		report.Attempted++

		art, err := p.decode(c, display)
		if err != nil {
			reason := err.Error()
			if errors.Is(err, decoder.ErrUnsupportedVersion) {
				reason = fmt.Sprintf("format version not supported by this decoder (file is likely valid): %v", err)
			}
			report.Failures = append(report.Failures, Failure{Path: display, Reason: reason})
			log.Warn("candidate failed", slog.String("path", display), slog.String("error", reason))
			continue
		}

		proc := Processed{Candidate: c, Artifact: art}
		report.Successes = append(report.Successes, proc)
		if p.Observer != nil {
			p.Observer(proc)
		}
	}

	report.Elapsed = time.Since(start)
	return report
}

func (p *Processor) decode(c models.Candidate, display string) (*models.Artifact, error) {
	if c.Stream != nil {
		return p.Decoder.OpenStream(bytes.NewReader(c.Stream), display)
	}
	return p.Decoder.OpenPath(c.Path)
}
