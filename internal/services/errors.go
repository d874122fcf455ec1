// Package services defines the error taxonomy shared by the move engine and
// the scanner client, and maps it to process exit codes.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrPermission    = errors.New("permission denied")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for exit-code classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Exit codes are stable so timer units and shell wrappers can branch on
// them.
const (
	ExitFailure       = 1
	ExitUsage         = 2
	ExitNotFound      = 3
	ExitPermission    = 4
	ExitExternalTool  = 5
	ExitConfiguration = 6
)

// ExitCode maps an error to the process exit code the CLI should return.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrPermission):
		return ExitPermission
	case errors.Is(err, ErrExternalTool):
		return ExitExternalTool
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrValidation):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
