package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlindqvist/tracefan/internal/decoder"
	"github.com/mlindqvist/tracefan/internal/dedup"
	"github.com/mlindqvist/tracefan/internal/models"
)

// fakeDecoder returns canned outcomes keyed by base name.
type fakeDecoder struct {
	fail        map[string]error
	streamCalls int
}

func (f *fakeDecoder) OpenPath(path string) (*models.Artifact, error) {
	if err, ok := f.fail[filepath.Base(path)]; ok {
		return nil, err
	}
	return &models.Artifact{SourcePath: path, ExecutableName: "APP.EXE"}, nil
}

func (f *fakeDecoder) OpenStream(_ io.Reader, label string) (*models.Artifact, error) {
	f.streamCalls++
	return &models.Artifact{SourcePath: label, ExecutableName: "APP.EXE"}, nil
}

func candidates(t *testing.T, contents ...string) []models.Candidate {
	t.Helper()
	dir := t.TempDir()
	var out []models.Candidate
	for i, content := range contents {
		p := filepath.Join(dir, fmt.Sprintf("cand-%02d.pf", i))
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		out = append(out, models.Candidate{Path: p, Provenance: models.Live})
	}
	return out
}

func newProcessor(dec decoder.Decoder, dedupOn bool) *Processor {
	return &Processor{
		Dedup:   dedup.New(dedupOn),
		Decoder: dec,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	cands := candidates(t, "a", "b", "c", "d", "e")
	dec := &fakeDecoder{fail: map[string]error{
		"cand-01.pf": fmt.Errorf("file is locked"),
		"cand-03.pf": fmt.Errorf("truncated header"),
	}}

	rep := newProcessor(dec, false).Run(cands)

	if len(rep.Successes) != 3 {
		t.Errorf("successes = %d, want 3", len(rep.Successes))
	}
	if len(rep.Failures) != 2 {
		t.Errorf("failures = %d, want 2", len(rep.Failures))
	}
	if rep.Attempted != 5 {
		t.Errorf("attempted = %d, want 5", rep.Attempted)
	}
	if rep.RunID == "" {
		t.Error("run id not assigned")
	}
}

func TestRun_UnsupportedVersionDistinguished(t *testing.T) {
	cands := candidates(t, "a")
	dec := &fakeDecoder{fail: map[string]error{
		"cand-00.pf": fmt.Errorf("header says 99: %w", decoder.ErrUnsupportedVersion),
	}}

	rep := newProcessor(dec, false).Run(cands)

	if len(rep.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(rep.Failures))
	}
	if !strings.Contains(rep.Failures[0].Reason, "not supported by this decoder") {
		t.Errorf("reason = %q, want version-specific message", rep.Failures[0].Reason)
	}
}

func TestRun_DuplicatesRejectedNotAttempted(t *testing.T) {
	// Three files, two byte-identical: dedup keeps the first of the pair.
	cands := candidates(t, "same", "same", "other")

	rep := newProcessor(&fakeDecoder{}, true).Run(cands)

	if rep.Attempted != 2 {
		t.Errorf("attempted = %d, want 2", rep.Attempted)
	}
	if len(rep.Successes) != 2 {
		t.Errorf("successes = %d, want 2", len(rep.Successes))
	}
	// First-wins: the kept representative is the first in order.
	if filepath.Base(rep.Successes[0].Artifact.SourcePath) != "cand-00.pf" {
		t.Errorf("kept = %s, want cand-00.pf", rep.Successes[0].Artifact.SourcePath)
	}
}

func TestRun_UnreadableCandidateIsHardError(t *testing.T) {
	cands := candidates(t, "a")
	missing := models.Candidate{Path: filepath.Join(t.TempDir(), "gone.pf")}

	rep := newProcessor(&fakeDecoder{}, true).Run(append([]models.Candidate{missing}, cands...))

	if len(rep.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(rep.Failures))
	}
	if len(rep.Successes) != 1 {
		t.Errorf("successes = %d, want 1 (processing continued)", len(rep.Successes))
	}
}

func TestRun_StreamCandidatesUseStreamDecode(t *testing.T) {
	dec := &fakeDecoder{}
	stream := models.Candidate{
		Path:       "/evidence/host.pf",
		Provenance: models.Provenance{Origin: models.OriginLive, StreamName: "ads"},
		Stream:     []byte("payload"),
	}

	rep := newProcessor(dec, false).Run([]models.Candidate{stream})

	if dec.streamCalls != 1 {
		t.Errorf("stream decodes = %d, want 1", dec.streamCalls)
	}
	if len(rep.Successes) != 1 {
		t.Fatalf("successes = %d, want 1", len(rep.Successes))
	}
	if got := rep.Successes[0].Artifact.SourcePath; got != "/evidence/host.pf:ads" {
		t.Errorf("label = %q", got)
	}
}

func TestRun_ObserverPerSuccessOnly(t *testing.T) {
	cands := candidates(t, "a", "b")
	dec := &fakeDecoder{fail: map[string]error{"cand-01.pf": fmt.Errorf("boom")}}

	var seen []string
	p := newProcessor(dec, false)
	p.Observer = func(pr Processed) {
		seen = append(seen, filepath.Base(pr.Artifact.SourcePath))
	}
	p.Run(cands)

	if len(seen) != 1 || seen[0] != "cand-00.pf" {
		t.Errorf("observer saw %v, want only cand-00.pf", seen)
	}
}
