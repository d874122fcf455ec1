package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalize expands and absolutizes path fields and trims user-supplied
// strings so the rest of the program never sees "~" or stray whitespace.
func (c *Config) normalize() error {
	var err error
	if c.Paths.LibraryDir, err = normalizePath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = normalizePath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.JournalPath, err = normalizePath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	if c.Scanner.LockPath, err = normalizePath(c.Scanner.LockPath); err != nil {
		return fmt.Errorf("scanner.lock_path: %w", err)
	}

	// The scanner binary may live on PATH, so only tilde-expand it.
	binary := strings.TrimSpace(c.Scanner.Binary)
	if strings.HasPrefix(binary, "~") {
		if binary, err = ExpandPath(binary); err != nil {
			return fmt.Errorf("scanner.binary: %w", err)
		}
	}
	c.Scanner.Binary = binary

	for i := range c.Library.Sections {
		s := &c.Library.Sections[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Dir = strings.TrimSpace(s.Dir)
		if s.Dir == "" {
			s.Dir = s.Name
		}
	}

	c.Mover.Owner = strings.TrimSpace(c.Mover.Owner)
	c.Mover.Group = strings.TrimSpace(c.Mover.Group)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// ExpandPath resolves a leading "~" or "~user-less" prefix against the
// current user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported path prefix in %q", path)
}
