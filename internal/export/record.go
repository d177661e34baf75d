// Package export projects decoded artifacts into flat records and fans
// them out to the configured sinks.
package export

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/mlindqvist/tracefan/internal/models"
)

// MachineTimeLayout is the sortable rendering used by the structured
// line sink, independent of the operator-facing layout.
const MachineTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultTimeLayout is the operator-facing rendering used when no
// custom layout is configured.
const DefaultTimeLayout = "2006-01-02 15:04:05"

// filetimeFloor is the epoch floor some decoders emit for absent volume
// creation timestamps. Rendered as empty, never as a literal date.
var filetimeFloor = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// Record is the flat projection of one artifact, shared by the tabular,
// structured-line, and document sinks.
type Record struct {
	XMLName xml.Name `json:"-" xml:"Artifact"`

	SourceFile     string `json:"source_file" xml:"SourceFile"`
	SourceCreated  string `json:"source_created" xml:"SourceCreated"`
	SourceModified string `json:"source_modified" xml:"SourceModified"`
	SourceAccessed string `json:"source_accessed" xml:"SourceAccessed"`

	ExecutableName string `json:"executable_name" xml:"ExecutableName"`
	Hash           string `json:"hash" xml:"Hash"`
	Size           int64  `json:"size" xml:"Size"`
	Version        string `json:"version" xml:"Version"`

	RunCount int    `json:"run_count" xml:"RunCount"`
	LastRun  string `json:"last_run" xml:"LastRun"`

	Volume0Name    string `json:"volume0_name" xml:"Volume0Name"`
	Volume0Serial  string `json:"volume0_serial" xml:"Volume0Serial"`
	Volume0Created string `json:"volume0_created" xml:"Volume0Created"`
	Volume1Name    string `json:"volume1_name" xml:"Volume1Name"`
	Volume1Serial  string `json:"volume1_serial" xml:"Volume1Serial"`
	Volume1Created string `json:"volume1_created" xml:"Volume1Created"`
	VolumeNote     string `json:"volume_note,omitempty" xml:"VolumeNote"`

	Directories string `json:"directories" xml:"Directories"`
	FilesLoaded string `json:"files_loaded" xml:"FilesLoaded"`

	PartialDecode bool `json:"partial_decode" xml:"PartialDecode"`
}

// TimelineRecord is one exploded run entry: a run timestamp paired with
// the resolved path of the tracked executable.
type TimelineRecord struct {
	RunTime    string `json:"run_time"`
	Executable string `json:"executable"`
	SourceFile string `json:"source_file"`
}

// Project maps one artifact into its flat record and timeline rows.
// display is the provenance-rendered source path; layout is the Go time
// layout for every rendered timestamp. Pure: same inputs, same outputs.
func Project(a *models.Artifact, display, layout string) (Record, []TimelineRecord) {
	r := Record{
		SourceFile:     display,
		SourceCreated:  renderTime(a.SourceCreated, layout),
		SourceModified: renderTime(a.SourceModified, layout),
		SourceAccessed: renderTime(a.SourceAccessed, layout),
		ExecutableName: a.ExecutableName,
		Hash:           a.Hash,
		Size:           a.Size,
		Version:        a.Version,
		RunCount:       a.RunCount,
		LastRun:        renderTime(a.LastRun(), layout),
		PartialDecode:  a.PartialDecode,
	}

	if len(a.Volumes) > 0 {
		r.Volume0Name = a.Volumes[0].DeviceName
		r.Volume0Serial = a.Volumes[0].Serial
		r.Volume0Created = renderTime(a.Volumes[0].Created, layout)
	}
	if len(a.Volumes) > 1 {
		r.Volume1Name = a.Volumes[1].DeviceName
		r.Volume1Serial = a.Volumes[1].Serial
		r.Volume1Created = renderTime(a.Volumes[1].Created, layout)
	}
	if n := len(a.Volumes); n > 2 {
		r.VolumeNote = fmt.Sprintf("%d volumes present; review the remaining %d interactively", n, n-2)
	}

	// Partial decodes keep their header-level fields but never claim
	// directory or file contents that may be truncated.
	if !a.PartialDecode {
		var dirs []string
		for _, v := range a.Volumes {
			dirs = append(dirs, v.Directories...)
		}
		r.Directories = strings.Join(dirs, ", ")
		r.FilesLoaded = strings.Join(a.FilePaths, ", ")
	}

	exe := ResolveExecutable(a)
	timeline := make([]TimelineRecord, 0, len(a.RunTimes))
	for _, rt := range a.RunTimes {
		timeline = append(timeline, TimelineRecord{
			RunTime:    renderTime(rt, layout),
			Executable: exe,
			SourceFile: display,
		})
	}
	return r, timeline
}

// ResolveExecutable returns the first referenced file path ending with
// the tracked executable's name, falling back to the bare name when no
// reference matches.
func ResolveExecutable(a *models.Artifact) string {
	want := strings.ToLower(a.ExecutableName)
	if want == "" {
		return a.ExecutableName
	}
	for _, p := range a.FilePaths {
		if strings.HasSuffix(strings.ToLower(p), want) {
			return p
		}
	}
	return a.ExecutableName
}

func renderTime(t time.Time, layout string) string {
	if t.IsZero() || t.Equal(filetimeFloor) {
		return ""
	}
	return t.UTC().Format(layout)
}
