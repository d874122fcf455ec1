package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFilePreservesContentAndMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(src, []byte("data"), 0o640); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	// umask may clear group bits; owner bits must survive.
	if info.Mode().Perm()&0o600 != 0o600 {
		t.Fatalf("unexpected mode %o", info.Mode().Perm())
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "show")
	if err := os.MkdirAll(filepath.Join(src, "Season 01"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "Season 01", "e01.mkv"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(src, "Season 01"), filepath.Join(src, "link")); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out")
	if err := CopyTree(src, dst, true); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "Season 01", "e01.mkv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "video" {
		t.Fatalf("content mismatch: %q", got)
	}
	if _, err := os.Lstat(filepath.Join(dst, "link")); !os.IsNotExist(err) {
		t.Fatal("symlink should not be copied")
	}
}

func TestCopyTreeRejectsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	for _, d := range []string{src, dst} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := CopyTree(src, dst, false); err == nil {
		t.Fatal("expected error for existing destination")
	}
}

func TestCopyTreeFailureRemovesPartialDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root reads unreadable files")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "show")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	// Sorted after "a.mkv" so the copy fails mid-tree, with part of the
	// destination already written.
	if err := os.WriteFile(filepath.Join(src, "a.mkv"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.mkv"), []byte("locked"), 0o000); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out")
	if err := CopyTree(src, dst, true); err == nil {
		t.Fatal("expected error for unreadable source file")
	}
	if _, err := os.Lstat(dst); !os.IsNotExist(err) {
		t.Fatalf("partial destination should be removed, got %v", err)
	}
}

func TestSameDevice(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	if err := os.WriteFile(a, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	same, err := SameDevice(a, filepath.Join(dir, "does-not-exist-yet"))
	if err != nil {
		t.Fatalf("SameDevice: %v", err)
	}
	if !same {
		t.Fatal("paths under one temp dir should share a device")
	}
}

func TestTreeSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 50), 0o644); err != nil {
		t.Fatal(err)
	}

	size, err := TreeSize(dir)
	if err != nil {
		t.Fatal(err)
	}
	if size != 150 {
		t.Fatalf("TreeSize = %d, want 150", size)
	}
}
