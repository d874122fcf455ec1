package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"mvvid/internal/services"
)

// SelectSources returns the entries of dir whose names match pattern,
// sorted by name. Symlinks are excluded so a dangling or recursive link can
// never be filed into the library.
func SelectSources(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "library", "compile pattern", fmt.Sprintf("invalid match pattern %q", pattern), err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "library", "read directory", dir, err)
	}

	var matched []string
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		if matcher.Match(entry.Name()) {
			matched = append(matched, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(matched)
	return matched, nil
}
