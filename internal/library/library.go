// Package library models Plex library sections and selects the files to be
// filed under them.
package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mvvid/internal/config"
	"mvvid/internal/services"
)

// Section is one Plex library section with its destination resolved to an
// absolute directory. Static after catalog construction.
type Section struct {
	Name string
	Key  int
	Dir  string
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// DisplayName renders the section's directory name for humans:
// "TV_Shows" becomes "TV Shows".
func (s Section) DisplayName() string {
	name := strings.ReplaceAll(filepath.Base(s.Dir), "_", " ")
	return titleCaser.String(name)
}

// Destination returns the target path for a source entry moved into the
// section.
func (s Section) Destination(source string) string {
	return filepath.Join(s.Dir, filepath.Base(source))
}

// Catalog holds the configured sections in configuration order.
type Catalog struct {
	sections []Section
}

// NewCatalog resolves configured sections against the library root.
func NewCatalog(cfg *config.Config) (*Catalog, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "library", "build catalog", "configuration not loaded", nil)
	}
	sections := make([]Section, 0, len(cfg.Library.Sections))
	for _, s := range cfg.Library.Sections {
		dir := s.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Paths.LibraryDir, dir)
		}
		sections = append(sections, Section{Name: s.Name, Key: s.Key, Dir: dir})
	}
	if len(sections) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "library", "build catalog", "no sections configured", nil)
	}
	return &Catalog{sections: sections}, nil
}

// Sections returns the sections in configuration order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Lookup finds a section by name, tolerating case and singular/plural
// variants ("movie" matches the "movies" section).
func (c *Catalog) Lookup(name string) (Section, error) {
	want := normalizeName(name)
	if want == "" {
		return Section{}, services.Wrap(services.ErrValidation, "library", "lookup section", "section name required", nil)
	}
	for _, s := range c.sections {
		if normalizeName(s.Name) == want {
			return s, nil
		}
	}
	known := make([]string, 0, len(c.sections))
	for _, s := range c.sections {
		known = append(known, s.Name)
	}
	sort.Strings(known)
	return Section{}, services.Wrap(
		services.ErrValidation,
		"library",
		"lookup section",
		fmt.Sprintf("unknown section %q (configured: %s)", name, strings.Join(known, ", ")),
		nil,
	)
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), "s")
}
