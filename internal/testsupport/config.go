// Package testsupport provides fixtures shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mvvid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The library root is created with the default section directories, the
// scanner binary points at a stub script that records its arguments, and
// ownership handoff is disabled because test environments have no plex
// user.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalPath = filepath.Join(base, "journal.db")
	cfg.Scanner.Binary = StubScanner(t, base)
	cfg.Scanner.TimeoutSeconds = 30
	cfg.Scanner.LockPath = filepath.Join(base, "scanner.lock")
	cfg.Mover.Owner = ""
	cfg.Mover.Group = ""

	for _, s := range cfg.Library.Sections {
		if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryDir, s.Dir), 0o755); err != nil {
			t.Fatalf("create section dir %s: %v", s.Dir, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// StubScanner writes an executable that appends its arguments to
// ScannerLog(base) and exits zero.
func StubScanner(t testing.TB, base string) string {
	t.Helper()

	path := filepath.Join(base, "plex-media-scanner")
	// printf rather than echo: several shells eat leading-dash arguments.
	script := "#!/bin/sh\nprintf '%s\\n' \"$*\" >> \"" + ScannerLog(base) + "\"\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write scanner stub: %v", err)
	}
	return path
}

// ScannerLog returns the invocation log path the stub scanner appends to.
func ScannerLog(base string) string {
	return filepath.Join(base, "scanner-invocations.log")
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}

// WriteConfig serializes cfg to a TOML file under the config's base
// directory and returns its path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
