package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mlindqvist/tracefan/internal/batch"
	"github.com/mlindqvist/tracefan/internal/classify"
	"github.com/mlindqvist/tracefan/internal/models"
)

func processed() batch.Processed {
	return batch.Processed{
		Candidate: models.Candidate{Path: "/evidence/APP.EXE-1.pf", Provenance: models.Live},
		Artifact: &models.Artifact{
			SourcePath:     "/evidence/APP.EXE-1.pf",
			ExecutableName: "APP.EXE",
			RunCount:       2,
			RunTimes: []time.Time{
				time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
				time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
			},
			FilePaths: []string{`\VOLUME1\TEMP\APP.EXE`},
		},
	}
}

func TestRecord_NarratesArtifact(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, classify.New([]string{"temp"}), "", false)
	r.Record(processed())

	s := out.String()
	for _, want := range []string{"/evidence/APP.EXE-1.pf", "APP.EXE", "Run count", "Previous run 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRecord_QuietSuppressesNarration(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, classify.New(nil), "", true)
	r.Record(processed())
	if out.Len() != 0 {
		t.Errorf("quiet mode produced output:\n%s", out.String())
	}
}

func TestSummary_AlwaysPrints(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, classify.New(nil), "", true)
	rep := batch.NewReport()
	rep.Attempted = 3
	rep.Failures = append(rep.Failures, batch.Failure{Path: "/evidence/bad.pf", Reason: "truncated"})
	r.Summary(rep)

	s := out.String()
	for _, want := range []string{"Batch complete", "Attempted: 3", "Failed: 1", "/evidence/bad.pf", "truncated"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestRecord_PartialDecodeNote(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, classify.New(nil), "", false)
	p := processed()
	p.Artifact.PartialDecode = true
	r.Record(p)
	if !strings.Contains(out.String(), "partial decode") {
		t.Errorf("output missing partial decode note:\n%s", out.String())
	}
}
