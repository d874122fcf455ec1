package mover_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mvvid/internal/library"
	"mvvid/internal/logging"
	"mvvid/internal/mover"
	"mvvid/internal/services"
	"mvvid/internal/testsupport"
)

func newMover(t *testing.T) (*mover.Mover, library.Section) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	catalog, err := library.NewCatalog(cfg)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	section, err := catalog.Lookup("movies")
	if err != nil {
		t.Fatal(err)
	}
	return mover.New(cfg, logging.NewNop()), section
}

func TestPlanMissingSourceDoesNotMutate(t *testing.T) {
	m, section := newMover(t)

	missing := filepath.Join(t.TempDir(), "ghost.mkv")
	_, err := m.Plan(missing, section)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}

	entries, readErr := os.ReadDir(section.Dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("section directory mutated: %v", entries)
	}
}

func TestMoveFilePlacesAtExactDestination(t *testing.T) {
	m, section := newMover(t)

	src := filepath.Join(t.TempDir(), "Example (2021).mkv")
	testsupport.WriteFile(t, src, 4096)

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := filepath.Join(section.Dir, "Example (2021).mkv")
	if req.Destination != want {
		t.Fatalf("destination %q, want %q", req.Destination, want)
	}

	res, err := m.Move(context.Background(), req, false)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Size != 4096 {
		t.Fatalf("unexpected size: %d", res.Size)
	}
	// Source and library share the temp filesystem; the device probe must
	// keep this on the rename path, not the copy fallback.
	if res.Mode != mover.ModeRename {
		t.Fatalf("expected rename mode, got %s", res.Mode)
	}

	if _, err := os.Stat(want); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if _, err := os.Lstat(src); !os.IsNotExist(err) {
		t.Fatal("source should be gone after a move")
	}
}

func TestMoveDirectory(t *testing.T) {
	m, section := newMover(t)

	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "Show S01")
	testsupport.WriteFile(t, filepath.Join(src, "e01.mkv"), 2048)
	testsupport.WriteFile(t, filepath.Join(src, "e02.mkv"), 2048)

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !req.IsDir || req.Size != 4096 {
		t.Fatalf("unexpected plan: %+v", req)
	}

	if _, err := m.Move(context.Background(), req, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(section.Dir, "Show S01", "e02.mkv")); err != nil {
		t.Fatalf("tree content missing: %v", err)
	}
	if _, err := os.Lstat(src); !os.IsNotExist(err) {
		t.Fatal("source tree should be gone")
	}
}

func TestCopyKeepsSource(t *testing.T) {
	m, section := newMover(t)

	src := filepath.Join(t.TempDir(), "keep.mkv")
	testsupport.WriteFile(t, src, 128)

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Move(context.Background(), req, true)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Mode != mover.ModeCopy {
		t.Fatalf("expected copy mode, got %s", res.Mode)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should remain: %v", err)
	}
	if _, err := os.Stat(req.Destination); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestMoveRejectsExistingDestination(t *testing.T) {
	m, section := newMover(t)

	src := filepath.Join(t.TempDir(), "dup.mkv")
	testsupport.WriteFile(t, src, 64)
	testsupport.WriteFile(t, filepath.Join(section.Dir, "dup.mkv"), 64)

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Move(context.Background(), req, false)
	if !errors.Is(err, mover.ErrDestinationExists) {
		t.Fatalf("expected destination-exists marker, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("source should remain untouched: %v", statErr)
	}
}

func TestMoveUnwritableDestinationLeavesSource(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced for root")
	}
	m, section := newMover(t)

	src := filepath.Join(t.TempDir(), "locked.mkv")
	testsupport.WriteFile(t, src, 64)

	if err := os.Chmod(section.Dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(section.Dir, 0o755) })

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Move(context.Background(), req, false)
	if !errors.Is(err, services.ErrPermission) {
		t.Fatalf("expected permission marker, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("source should remain after failed move: %v", statErr)
	}
}

func TestMissingSectionDirectoryIsConfigurationError(t *testing.T) {
	m, section := newMover(t)
	if err := os.RemoveAll(section.Dir); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "a.mkv")
	testsupport.WriteFile(t, src, 64)

	req, err := m.Plan(src, section)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Move(context.Background(), req, false)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestPlanRejectsSymlink(t *testing.T) {
	m, section := newMover(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "real.mkv")
	testsupport.WriteFile(t, target, 16)
	link := filepath.Join(dir, "link.mkv")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	_, err := m.Plan(link, section)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker for symlink, got %v", err)
	}
}
