// Package spokesperson loads the spokesperson name registry and finds
// mentions in article text. The registry is a single-column spreadsheet
// maintained by the press office; the newest snapshot wins.
package spokesperson

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/textutil"
)

// FilePattern matches registry snapshot files inside the config dir.
const FilePattern = "spokespersons_*.xlsx"

type entry struct {
	display string
	pattern *regexp.Regexp
}

// Registry is the immutable set of known spokesperson names. A nil or
// empty registry is valid and matches nothing.
type Registry struct {
	entries []entry
}

// NewRegistry builds a registry from display names, preserving order and
// dropping blanks and duplicates.
func NewRegistry(names []string) *Registry {
	r := &Registry{}
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		folded := textutil.Fold(name)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		r.entries = append(r.entries, entry{
			display: name,
			pattern: textutil.WordPattern(folded),
		})
	}
	return r
}

// Load reads the most recent registry snapshot from dir, picking the
// lexicographically last file matching FilePattern (snapshots carry a
// sortable date suffix). A missing snapshot is not an error: the
// pipeline runs with an empty registry and a warning. A snapshot that
// exists but cannot be parsed is a configuration error.
func Load(dir string) (*Registry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, eris.Wrap(err, "spokesperson: glob registry dir")
	}
	if len(matches) == 0 {
		zap.L().Warn("spokesperson registry not found, upgrades disabled",
			zap.String("dir", dir),
			zap.String("pattern", FilePattern),
		)
		return NewRegistry(nil), nil
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spokesperson: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("spokesperson: %s has no sheets", path)
	}

	var names []string
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) == 0 {
			continue
		}
		names = append(names, row.Cells[0].String())
	}

	r := NewRegistry(names)
	zap.L().Info("spokesperson registry loaded",
		zap.String("file", filepath.Base(path)),
		zap.Int("names", r.Len()),
	)
	return r, nil
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// FindMentions returns the display names mentioned in title or body,
// deduplicated, in registry order. Matching is folded and whole-word.
func (r *Registry) FindMentions(title, body string) []string {
	if r.Len() == 0 {
		return nil
	}
	text := textutil.Fold(title + " " + body)
	var found []string
	for _, e := range r.entries {
		if e.pattern.MatchString(text) {
			found = append(found, e.display)
		}
	}
	return found
}
