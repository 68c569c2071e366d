// Package statecache implements a cross-process compare-and-swap cache over the state of a
// file set. Every read-verify-write cycle runs under an advisory OS file lock so independently
// invoked build processes can share one artifact without regressing its recorded state.
package statecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// MissingMarker stands in for the mtime of a file that does not exist.
const MissingMarker = "MISSING"

var _ ports.StateCache = (*Cache)(nil)

// Cache is one namespace (subject) of the state cache.
type Cache struct {
	dir        string
	subject    string
	recordPath string
	lockPath   string
	logger     ports.Logger
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report recovered record corruption.
func WithLogger(logger ports.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock overrides the clock used to timestamp records.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New returns the cache for subject stored under dir.
func New(dir, subject string, opts ...Option) *Cache {
	c := &Cache{
		dir:        dir,
		subject:    subject,
		recordPath: filepath.Join(dir, subject+domain.StateRecordExt),
		lockPath:   filepath.Join(dir, subject+domain.StateLockExt),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subject returns the namespace of the cache.
func (c *Cache) Subject() string {
	return c.subject
}

// CurrentHash returns the SHA-256 over the sorted (canonical path, mtime) pairs of files,
// with the file count mixed in last.
func (c *Cache) CurrentHash(files []string) string {
	type pair struct {
		path  string
		mtime string
	}

	pairs := make([]pair, 0, len(files))
	for _, f := range files {
		p := pair{path: fs.Canonical(f), mtime: MissingMarker}
		if info, err := os.Stat(f); err == nil {
			p.mtime = strconv.FormatFloat(domain.Seconds(info.ModTime()), 'f', -1, 64)
		}
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].path != pairs[j].path {
			return pairs[i].path < pairs[j].path
		}
		return pairs[i].mtime < pairs[j].mtime
	})

	h := sha256.New()
	for _, p := range pairs {
		_, _ = h.Write([]byte(p.path))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p.mtime))
		_, _ = h.Write([]byte{'\n'})
	}
	_, _ = fmt.Fprintf(h, "count=%d", len(files))

	return hex.EncodeToString(h.Sum(nil))
}

// IsValid reports whether the persisted record matches the current state of files.
func (c *Cache) IsValid(files []string) (bool, error) {
	current := c.CurrentHash(files)

	var valid bool
	err := c.withLock(func() error {
		rec := c.readRecord()
		valid = rec != nil && rec.Hash == current
		return nil
	})
	return valid, err
}

// Snapshot captures the current state of files for a later Commit.
func (c *Cache) Snapshot(files []string) domain.StateSnapshot {
	return domain.StateSnapshot{Hash: c.CurrentHash(files), FileCount: len(files)}
}

// Commit persists snap unless a record with a different hash already exists, in which case a
// writer that finished later already reflects newer state and the commit is rejected.
func (c *Cache) Commit(snap domain.StateSnapshot) (bool, error) {
	var committed bool
	err := c.withLock(func() error {
		if rec := c.readRecord(); rec != nil && rec.Hash != snap.Hash {
			return nil
		}

		rec := domain.AtomicCacheRecord{
			Hash:      snap.Hash,
			Timestamp: domain.Seconds(c.now()),
			Subject:   c.subject,
			FileCount: snap.FileCount,
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
		}
		if err := fs.WriteAtomic(c.recordPath, data); err != nil {
			return err
		}
		committed = true
		return nil
	})
	return committed, err
}

// MarkSuccess commits the current state of files.
func (c *Cache) MarkSuccess(files []string) (bool, error) {
	return c.Commit(c.Snapshot(files))
}

// Invalidate removes the persisted record.
func (c *Cache) Invalidate() error {
	return c.withLock(func() error {
		if err := os.Remove(c.recordPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", c.recordPath)
		}
		return nil
	})
}

// Record returns the persisted record, or nil if there is none.
func (c *Cache) Record() (*domain.AtomicCacheRecord, error) {
	var rec *domain.AtomicCacheRecord
	err := c.withLock(func() error {
		rec = c.readRecord()
		return nil
	})
	return rec, err
}

// readRecord returns nil for a missing or unreadable record. The caller must hold the lock.
func (c *Cache) readRecord() *domain.AtomicCacheRecord {
	data, err := os.ReadFile(c.recordPath)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) {
			c.warn("state record unreadable, treating as absent: " + err.Error())
		}
		return nil
	}

	var rec domain.AtomicCacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		c.warn("state record corrupt, treating as absent: " + c.recordPath)
		return nil
	}
	return &rec
}

func (c *Cache) withLock(fn func() error) (err error) {
	if err := os.MkdirAll(c.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", c.dir)
	}

	lock, err := newLockFile(c.lockPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", c.lockPath)
	}
	defer lock.Close() //nolint:errcheck // Closing releases the lock as well

	if err := lock.Lock(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", c.lockPath)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = zerr.With(zerr.Wrap(uerr, domain.ErrLockFailed.Error()), "path", c.lockPath)
		}
	}()

	return fn()
}

func (c *Cache) warn(msg string) {
	if c.logger != nil {
		c.logger.Warn(msg)
	}
}
