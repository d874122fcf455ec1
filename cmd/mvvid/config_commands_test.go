package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvvid/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "library_dir") {
		t.Errorf("sample config missing library_dir:\n%s", data)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists without --overwrite")
	}
	if out, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}

func TestConfigShowRendersEffectiveConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := testsupport.WriteConfig(t, cfg)

	out, err := runCLI(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, cfg.Paths.LibraryDir) {
		t.Errorf("show output missing library dir:\n%s", out)
	}
}

func TestConfigPathReportsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	out, err := runCLI(t, "--config", missing, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v\n%s", err, out)
	}
	if !strings.Contains(out, missing) {
		t.Errorf("expected resolved path in output:\n%s", out)
	}
	if !strings.Contains(out, "does not exist") {
		t.Errorf("expected missing-file notice:\n%s", out)
	}
}
