package models

import (
	"path/filepath"
	"testing"
)

func TestDisplayPath_Live(t *testing.T) {
	c := Candidate{Path: "/evidence/Prefetch/APP.pf", Provenance: Live}
	if got := c.DisplayPath(); got != "/evidence/Prefetch/APP.pf" {
		t.Errorf("display = %q", got)
	}
}

func TestDisplayPath_SnapshotStripsMountRoot(t *testing.T) {
	c := Candidate{
		Path: filepath.Join("/mnt/snap", "snap-001", "sub", "path.pf"),
		Provenance: Provenance{
			Origin:     OriginSnapshot,
			SnapshotID: "snap-001",
			MountRoot:  filepath.Join("/mnt/snap", "snap-001"),
		},
	}
	want := "SNAPSHOT" + string(filepath.Separator) + filepath.Join("sub", "path.pf")
	if got := c.DisplayPath(); got != want {
		t.Errorf("display = %q, want %q", got, want)
	}
}

func TestDisplayPath_StreamSuffix(t *testing.T) {
	c := Candidate{
		Path:       "/evidence/host.pf",
		Provenance: Provenance{Origin: OriginLive, StreamName: "hidden"},
	}
	if got := c.DisplayPath(); got != "/evidence/host.pf:hidden" {
		t.Errorf("display = %q", got)
	}
}

func TestLastRun_Empty(t *testing.T) {
	a := &Artifact{}
	if !a.LastRun().IsZero() {
		t.Error("expected zero time for artifact with no runs")
	}
}
