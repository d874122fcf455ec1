package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if c.Scanner.Binary == "" {
		return errors.New("scanner.binary must be set")
	}
	if c.Scanner.TimeoutSeconds <= 0 {
		return errors.New("scanner.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if len(c.Library.Sections) == 0 {
		return errors.New("library.sections must list at least one section")
	}
	names := make(map[string]struct{}, len(c.Library.Sections))
	keys := make(map[int]struct{}, len(c.Library.Sections))
	for _, s := range c.Library.Sections {
		if s.Name == "" {
			return errors.New("library section name must be set")
		}
		if s.Key <= 0 {
			return fmt.Errorf("library section %q: key must be a positive section id", s.Name)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("library section %q listed twice", s.Name)
		}
		if _, dup := keys[s.Key]; dup {
			return fmt.Errorf("library section %q: key %d already used", s.Name, s.Key)
		}
		names[s.Name] = struct{}{}
		keys[s.Key] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
