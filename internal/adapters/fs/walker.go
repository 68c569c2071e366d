// Package fs provides file system adapters for resolving, hashing and writing build files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// SourceExtensions are the translation unit suffixes picked up when a directory is walked.
var SourceExtensions = []string{".c", ".cc", ".cpp", ".cxx"}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkSources yields every translation unit below root, skipping VCS and kiln directories.
func (w *Walker) WalkSources(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && w.skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !isSource(path) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

func (w *Walker) skipDir(name string) bool {
	switch name {
	case ".git", ".jj", ".kiln":
		return true
	}
	return false
}

func isSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range SourceExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
