package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	LibraryDir  string `toml:"library_dir"`
	LogDir      string `toml:"log_dir"`
	JournalPath string `toml:"journal_path"`
}

// Scanner contains configuration for the Plex Media Scanner binary.
type Scanner struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LockPath       string `toml:"lock_path"`
}

// Section describes one Plex library section: the name used on the command
// line, the numeric key the scanner expects, and the destination directory
// relative to paths.library_dir (absolute paths are used as-is).
type Section struct {
	Name string `toml:"name"`
	Key  int    `toml:"key"`
	Dir  string `toml:"dir"`
}

// Library lists the sections media can be filed under.
type Library struct {
	Sections []Section `toml:"sections"`
}

// Mover contains configuration for the move engine.
type Mover struct {
	// Verify enables sha256 verification of cross-filesystem copies before
	// the source is deleted.
	Verify bool `toml:"verify"`
	// Owner and Group, when non-empty, are applied to moved entries so the
	// Plex server process can read them. Empty disables the chown.
	Owner string `toml:"owner"`
	Group string `toml:"group"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for mvvid.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scanner Scanner `toml:"scanner"`
	Library Library `toml:"library"`
	Mover   Mover   `toml:"mover"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/mvvid/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mvvid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories mvvid owns. The library
// directory is deliberately excluded: section directories belong to the
// Plex server and are never created here.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Paths.JournalPath != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.JournalPath))
	}
	if c.Scanner.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.Scanner.LockPath))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
