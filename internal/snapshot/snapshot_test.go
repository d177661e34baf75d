package snapshot

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlindqvist/tracefan/internal/discover"
	"github.com/mlindqvist/tracefan/internal/models"
)

func write(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testCorrelator(t *testing.T, qualifier string, rootPaths ...string) *Correlator {
	t.Helper()
	var roots []Root
	for _, p := range rootPaths {
		roots = append(roots, Root{ID: filepath.Base(p), Path: p})
	}
	return &Correlator{
		Qualifier: qualifier,
		Roots:     roots,
		Disc:      discover.New(".pf", slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func TestStem(t *testing.T) {
	c := testCorrelator(t, "/evidence")
	stem, err := c.Stem("/evidence/Windows/Prefetch/APP.pf")
	if err != nil {
		t.Fatalf("Stem: %v", err)
	}
	want := filepath.Join("Windows", "Prefetch", "APP.pf")
	if stem != want {
		t.Errorf("stem = %q, want %q", stem, want)
	}
}

func TestStem_OutsideVolume(t *testing.T) {
	c := testCorrelator(t, "/evidence")
	if _, err := c.Stem("/other/file.pf"); err == nil {
		t.Fatal("expected error for path outside the volume")
	}
}

func TestMirrorFile_PerSnapshotHits(t *testing.T) {
	live := t.TempDir()
	snap1 := t.TempDir()
	snap2 := t.TempDir()

	livePath := filepath.Join(live, "Prefetch", "APP.pf")
	write(t, livePath, []byte("live"))
	// Mirror exists only in the first snapshot.
	write(t, filepath.Join(snap1, "Prefetch", "APP.pf"), []byte("old"))

	c := testCorrelator(t, live, snap1, snap2)
	got, err := c.MirrorFile(livePath)
	if err != nil {
		t.Fatalf("MirrorFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1 (silent miss in second snapshot)", len(got))
	}
	if got[0].Provenance.Origin != models.OriginSnapshot {
		t.Errorf("origin = %v", got[0].Provenance.Origin)
	}
	if got[0].Provenance.SnapshotID != filepath.Base(snap1) {
		t.Errorf("snapshot id = %q", got[0].Provenance.SnapshotID)
	}
}

func TestMirrorDir_RunsDiscoveryPerSnapshot(t *testing.T) {
	live := t.TempDir()
	snap := t.TempDir()

	liveDir := filepath.Join(live, "Prefetch")
	write(t, filepath.Join(liveDir, "A.pf"), []byte("a"))
	write(t, filepath.Join(snap, "Prefetch", "A.pf"), []byte("a-old"))
	write(t, filepath.Join(snap, "Prefetch", "B.pf"), []byte("b-old"))

	c := testCorrelator(t, live, snap)
	got, err := c.MirrorDir(liveDir)
	if err != nil {
		t.Fatalf("MirrorDir: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	for _, cand := range got {
		if cand.Provenance.Origin != models.OriginSnapshot {
			t.Errorf("origin = %v for %s", cand.Provenance.Origin, cand.Path)
		}
	}
}

func TestMirrorDir_MissingMirrorSkipped(t *testing.T) {
	live := t.TempDir()
	snap := t.TempDir() // no mirrored directory inside

	liveDir := filepath.Join(live, "Prefetch")
	write(t, filepath.Join(liveDir, "A.pf"), []byte("a"))

	c := testCorrelator(t, live, snap)
	got, err := c.MirrorDir(liveDir)
	if err != nil {
		t.Fatalf("MirrorDir: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("candidates = %d, want 0", len(got))
	}
}

func TestPreMounted_MountAndUnmount(t *testing.T) {
	p1 := t.TempDir()
	p2 := t.TempDir()
	m := PreMounted{Paths: []string{p1, p2}}

	roots, err := m.Mount("/", "")
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(roots) != 2 || roots[0].Path != p1 || roots[1].Path != p2 {
		t.Fatalf("roots = %v", roots)
	}
	if err := m.Unmount(""); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
}

func TestPreMounted_MissingRoot(t *testing.T) {
	m := PreMounted{Paths: []string{filepath.Join(t.TempDir(), "absent")}}
	if _, err := m.Mount("/", ""); err == nil {
		t.Fatal("expected error for missing snapshot root")
	}
}
