// Package render narrates processed artifacts on the console. It is
// wired into the pipeline as an observer and never touches exported
// data.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mlindqvist/tracefan/internal/batch"
	"github.com/mlindqvist/tracefan/internal/classify"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Faint(true)
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	exeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Underline(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Renderer prints human-readable artifact summaries with keyword and
// tracked-executable emphasis.
type Renderer struct {
	out    io.Writer
	cls    *classify.Classifier
	layout string
	quiet  bool
}

// New builds a Renderer writing to out. When quiet is set, per-record
// output is suppressed but the batch summary still prints.
func New(out io.Writer, cls *classify.Classifier, layout string, quiet bool) *Renderer {
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	return &Renderer{out: out, cls: cls, layout: layout, quiet: quiet}
}

// Record narrates one processed artifact. Satisfies batch.Observer.
func (r *Renderer) Record(p batch.Processed) {
	if r.quiet {
		return
	}
	a := p.Artifact

	fmt.Fprintln(r.out, headingStyle.Render(p.Candidate.DisplayPath()))
	r.field("Executable", a.ExecutableName)
	r.field("Hash", a.Hash)
	r.field("Run count", fmt.Sprintf("%d", a.RunCount))
	r.field("Last run", r.time(a.LastRun()))
	for i, rt := range a.RunTimes {
		if i == 0 {
			continue
		}
		r.field(fmt.Sprintf("Previous run %d", i), r.time(rt))
	}
	for i, v := range a.Volumes {
		r.field(fmt.Sprintf("Volume %d", i),
			fmt.Sprintf("%s (serial %s, created %s)", v.DeviceName, v.Serial, r.time(v.Created)))
		for _, dir := range v.Directories {
			fmt.Fprintf(r.out, "    %s\n", r.emphasize(dir, r.cls.Text(dir)))
		}
	}
	if len(a.FilePaths) > 0 {
		fmt.Fprintln(r.out, labelStyle.Render("  Files referenced:"))
		for _, p := range a.FilePaths {
			fmt.Fprintf(r.out, "    %s\n", r.emphasize(p, r.cls.FileRef(p, a.ExecutableName)))
		}
	}
	if a.PartialDecode {
		fmt.Fprintln(r.out, failStyle.Render("  (partial decode: directory and file lists may be incomplete)"))
	}
	fmt.Fprintln(r.out)
}

// Summary prints end-of-batch counts and the full failure list. Always
// printed, quiet or not.
func (r *Renderer) Summary(rep *batch.Report) {
	fmt.Fprintln(r.out, headingStyle.Render("Batch complete"))
	r.field("Run ID", rep.RunID)
	r.field("Processed", fmt.Sprintf("%d", len(rep.Successes)))
	r.field("Attempted", fmt.Sprintf("%d", rep.Attempted))
	r.field("Failed", fmt.Sprintf("%d", len(rep.Failures)))
	r.field("Elapsed", rep.Elapsed.Round(time.Millisecond).String())
	for _, f := range rep.Failures {
		fmt.Fprintf(r.out, "  %s %s: %s\n", failStyle.Render("FAIL"), f.Path, f.Reason)
	}
}

func (r *Renderer) field(label, value string) {
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Render(label+":"), value)
}

func (r *Renderer) time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(r.layout)
}

func (r *Renderer) emphasize(s string, tag classify.Tag) string {
	switch tag {
	case classify.TagExecutable:
		return exeStyle.Render(s)
	case classify.TagKeyword:
		return keywordStyle.Render(s)
	default:
		return s
	}
}
