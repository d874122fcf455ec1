package plexscan_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mvvid/internal/library"
	"mvvid/internal/services"
	"mvvid/internal/services/plexscan"
)

type fakeExecutor struct {
	calls [][]string
	err   error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) error {
	call := append([]string{binary}, args...)
	f.calls = append(f.calls, call)
	return f.err
}

func newTestClient(t *testing.T, exec plexscan.Executor) *plexscan.Client {
	t.Helper()
	lockPath := filepath.Join(t.TempDir(), "scanner.lock")
	client, err := plexscan.New("/opt/plex/Plex Media Scanner", 60, lockPath, plexscan.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestScanSectionArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)
	section := library.Section{Name: "movies", Key: 3, Dir: "/lib/Movies"}

	if err := client.ScanSection(context.Background(), section); err != nil {
		t.Fatalf("ScanSection: %v", err)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(exec.calls))
	}
	got := strings.Join(exec.calls[0], " ")
	want := "/opt/plex/Plex Media Scanner -s -r -c 3"
	if got != want {
		t.Fatalf("invocation %q, want %q", got, want)
	}
}

func TestScanDirectoryArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)
	section := library.Section{Name: "tv", Key: 4, Dir: "/lib/TV_Shows"}

	if err := client.ScanDirectory(context.Background(), section, "/lib/TV_Shows"); err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}

	got := strings.Join(exec.calls[0], " ")
	want := "/opt/plex/Plex Media Scanner -s -r -p -c 4 --directory /lib/TV_Shows"
	if got != want {
		t.Fatalf("invocation %q, want %q", got, want)
	}
}

func TestNonZeroExitSurfacesAsExternalToolError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 2: no such section")}
	client := newTestClient(t, exec)

	err := client.ScanSection(context.Background(), library.Section{Name: "movies", Key: 3})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "exit status 2") {
		t.Fatalf("exit status lost: %v", err)
	}
}

func TestEmptyBinaryRejected(t *testing.T) {
	_, err := plexscan.New("  ", 60, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestEmptyLockPathSkipsLocking(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := plexscan.New("scanner", 60, "", plexscan.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.ScanSection(context.Background(), library.Section{Name: "movies", Key: 3}); err != nil {
		t.Fatalf("ScanSection without lock: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(exec.calls))
	}
}
