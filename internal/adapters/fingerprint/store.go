// Package fingerprint implements the two-layer (mtime, content hash) file change detector.
package fingerprint

import (
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FingerprintStore = (*Store)(nil)

// Store keeps one evolving fingerprint per canonical path, shared by every caller.
// The reference time passed to HasChanged is only a fast-path shortcut; the answer is
// whether the content changed since anyone last asked about the path.
type Store struct {
	mu        sync.Mutex
	path      string
	mtimeOnly bool
	logger    ports.Logger
	entries   map[string]domain.FingerprintEntry
}

// Option configures a Store.
type Option func(*Store)

// WithMtimeOnly makes the store report a change whenever the file is newer than the
// reference, regardless of content. Nothing is recorded in this mode.
func WithMtimeOnly() Option {
	return func(s *Store) {
		s.mtimeOnly = true
	}
}

// WithLogger sets the logger used to report recovered cache corruption.
func WithLogger(logger ports.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open loads the store persisted at path. A missing or corrupt file yields an empty store.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]domain.FingerprintEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) {
			s.warn("fingerprint store unreadable, starting empty: " + err.Error())
		}
		return
	}

	entries := make(map[string]domain.FingerprintEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		s.warn("fingerprint store corrupt, starting empty: " + s.path)
		return
	}
	s.entries = entries
}

// HasChanged reports whether path changed relative to reference.
func (s *Store) HasChanged(path string, reference time.Time) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	current := domain.Seconds(info.ModTime())
	ref := domain.Seconds(reference)

	if s.mtimeOnly {
		return current > ref, nil
	}
	if current == ref {
		return false, nil
	}

	key := fs.Canonical(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, found := s.entries[key]
	if found && previous.ModificationTime == current {
		return false, nil
	}

	hash, err := fs.HashFile(path)
	if err != nil {
		return false, err
	}

	s.entries[key] = domain.FingerprintEntry{ModificationTime: current, ContentHash: hash}
	if err := s.persist(); err != nil {
		return false, err
	}

	if !found {
		return true, nil
	}
	return hash != previous.ContentHash, nil
}

// Forget drops the entry recorded for path.
func (s *Store) Forget(path string) error {
	key := fs.Canonical(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.persist()
}

// Entry returns the fingerprint recorded for path.
func (s *Store) Entry(path string) (domain.FingerprintEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[fs.Canonical(path)]
	return e, ok
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persist writes the whole map to a temporary file and renames it into place.
// The caller must hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	return fs.WriteAtomic(s.path, data)
}

func (s *Store) warn(msg string) {
	if s.logger != nil {
		s.logger.Warn(msg)
	}
}
