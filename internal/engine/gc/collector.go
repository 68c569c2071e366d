// Package gc bounds the link cache directory with a layered eviction policy.
package gc

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Collector evicts cached executables from one flat link directory.
type Collector struct {
	dir     string
	policy  domain.CachePolicy
	logger  ports.Logger
	metrics ports.Metrics
	now     func() time.Time
	workers int
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger reports plans and deletions to l.
func WithLogger(l ports.Logger) Option {
	return func(c *Collector) {
		c.logger = l
	}
}

// WithMetrics records every run in m.
func WithMetrics(m ports.Metrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

// WithClock overrides the clock the age layer measures against.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// New creates a Collector for dir.
func New(dir string, policy domain.CachePolicy, opts ...Option) *Collector {
	c := &Collector{
		dir:     dir,
		policy:  policy,
		now:     time.Now,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseName splits a link cache file name of the form {subject}_{key}{ext}. The subject may
// itself contain underscores; the key is the CacheKeyLen lowercase hex characters after the
// last one.
func ParseName(name string) (subject, key string, ok bool) {
	if subject, key, ok = splitKey(name); ok {
		return subject, key, true
	}
	if ext := filepath.Ext(name); ext != "" {
		return splitKey(strings.TrimSuffix(name, ext))
	}
	return "", "", false
}

func splitKey(stem string) (string, string, bool) {
	i := strings.LastIndexByte(stem, '_')
	if i <= 0 {
		return "", "", false
	}
	key := stem[i+1:]
	if len(key) != domain.CacheKeyLen || !isLowerHex(key) {
		return "", "", false
	}
	return stem[:i], key, true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Scan lists the cache entries in the link directory. A missing directory is empty.
func (c *Collector) Scan() ([]domain.LinkCacheEntry, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLinkCacheScanFailed.Error()), "path", c.dir)
	}

	entries := make([]domain.LinkCacheEntry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		subject, key, ok := ParseName(d.Name())
		if !ok {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// Removed concurrently.
			continue
		}
		entries = append(entries, domain.LinkCacheEntry{
			Path:      filepath.Join(c.dir, d.Name()),
			Subject:   subject,
			CacheKey:  key,
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return entries, nil
}

// Plan scans the link directory and partitions it into removed and kept entries without
// touching any file.
func (c *Collector) Plan(ctx context.Context) (domain.GCStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.GCStats{}, err
	}
	entries, err := c.Scan()
	if err != nil {
		return domain.GCStats{}, err
	}
	return partition(entries, c.policy, c.now()), nil
}

// Run applies the policy to the link directory. A dry run reports exactly what a real run
// would and deletes nothing. Failed deletions are joined into the returned error; the
// statistics still describe the plan.
func (c *Collector) Run(ctx context.Context, dryRun bool) (domain.GCStats, error) {
	stats, err := c.Plan(ctx)
	if err != nil {
		return domain.GCStats{}, err
	}

	var deleteErr error
	if !dryRun {
		deleteErr = c.remove(ctx, stats.Removed)
	}

	if c.metrics != nil {
		c.metrics.ObserveGC(stats, dryRun)
	}
	if c.logger != nil {
		verb := "removed"
		if dryRun {
			verb = "would remove"
		}
		c.logger.Info("link cache: " + verb + " " + humanize.Comma(int64(stats.FilesRemoved)) +
			" files (" + humanize.IBytes(uint64(stats.BytesFreed)) + "), kept " +
			humanize.Comma(int64(stats.FilesKept)) + " (" + humanize.IBytes(uint64(stats.BytesKept)) + ")")
	}

	return stats, deleteErr
}

func (c *Collector) remove(ctx context.Context, entries []domain.LinkCacheEntry) error {
	errs := make([]error, len(entries))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(c.workers, 1))
	for i, e := range entries {
		g.Go(func() error {
			if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs[i] = zerr.With(zerr.Wrap(err, domain.ErrLinkCacheDeleteFailed.Error()), "path", e.Path)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// partition applies the version, age and size layers in that order.
func partition(entries []domain.LinkCacheEntry, policy domain.CachePolicy, now time.Time) domain.GCStats {
	bySubject := make(map[string][]domain.LinkCacheEntry)
	for _, e := range entries {
		bySubject[e.Subject] = append(bySubject[e.Subject], e)
	}
	subjects := make([]string, 0, len(bySubject))
	for s, group := range bySubject {
		sort.Slice(group, func(i, j int) bool { return newer(group[i], group[j]) })
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	removed := make(map[string]bool)
	var order []domain.LinkCacheEntry
	evict := func(e domain.LinkCacheEntry) {
		removed[e.Path] = true
		order = append(order, e)
	}

	survivors := make(map[string]int, len(subjects))
	for _, s := range subjects {
		survivors[s] = len(bySubject[s])
	}

	if limit := policy.MaxVersionsPerSubject; limit > 0 {
		for _, s := range subjects {
			group := bySubject[s]
			for i := len(group) - 1; i >= limit; i-- {
				evict(group[i])
				survivors[s]--
			}
		}
	}

	if maxAge := policy.MaxAgeDays; maxAge > 0 {
		for _, s := range subjects {
			group := bySubject[s]
			for i := len(group) - 1; i >= 0; i-- {
				e := group[i]
				if removed[e.Path] || e.AgeDays(now) <= float64(maxAge) {
					continue
				}
				if policy.PreserveAtLeastOne && survivors[s] == 1 {
					continue
				}
				evict(e)
				survivors[s]--
			}
		}
	}

	if budget := policy.MaxTotalSizeBytes; budget > 0 {
		var total int64
		var oldestFirst []domain.LinkCacheEntry
		for _, e := range entries {
			if !removed[e.Path] {
				total += e.SizeBytes
				oldestFirst = append(oldestFirst, e)
			}
		}
		sort.Slice(oldestFirst, func(i, j int) bool { return newer(oldestFirst[j], oldestFirst[i]) })

		// Survivor counts only shrink, so an entry skipped once stays unevictable.
		for _, e := range oldestFirst {
			if total <= budget {
				break
			}
			if policy.PreserveAtLeastOne && survivors[e.Subject] == 1 {
				continue
			}
			evict(e)
			survivors[e.Subject]--
			total -= e.SizeBytes
		}
	}

	stats := domain.GCStats{Removed: order}
	for _, e := range order {
		stats.FilesRemoved++
		stats.BytesFreed += e.SizeBytes
	}
	for _, s := range subjects {
		for _, e := range bySubject[s] {
			if removed[e.Path] {
				continue
			}
			stats.FilesKept++
			stats.BytesKept += e.SizeBytes
			stats.Kept = append(stats.Kept, e)
		}
	}
	return stats
}

// newer orders entries newest first, breaking ties by path.
func newer(a, b domain.LinkCacheEntry) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path < b.Path
}
