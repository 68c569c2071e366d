package fs

import (
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver expands configured source patterns into concrete files.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveSources resolves patterns relative to root into a sorted, de-duplicated list of
// absolute paths. A pattern naming a directory contributes every translation unit below it.
func (r *Resolver) ResolveSources(patterns []string, root string) ([]string, error) {
	unique := make(map[string]bool)

	for _, pattern := range patterns {
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, pattern)
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "no files match pattern"), "pattern", pattern)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", match)
			}
			if !info.IsDir() {
				unique[match] = true
				continue
			}
			for src := range r.walker.WalkSources(match) {
				unique[src] = true
			}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}
