package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"mvvid/internal/testsupport"
)

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// scannerInvocations reads the stub scanner's invocation log, one line per
// call. A missing log means the scanner was never run.
func scannerInvocations(t *testing.T, base string) []string {
	t.Helper()

	data, err := os.ReadFile(testsupport.ScannerLog(base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read scanner log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
