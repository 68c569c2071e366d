package statecache_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/statecache"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupFiles(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, 0, len(names))
	mtime := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte(n), 0o600))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
		files = append(files, p)
	}
	return dir, files
}

func TestCurrentHash_OrderIndependent(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp", "b.cpp", "c.cpp")
	cache := statecache.New(filepath.Join(dir, "state"), "library")

	forward := cache.CurrentHash(files)
	reversed := cache.CurrentHash([]string{files[2], files[1], files[0]})

	assert.Equal(t, forward, reversed)
	assert.Len(t, forward, 64)
}

func TestCurrentHash_SensitiveToState(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp", "b.cpp")
	cache := statecache.New(filepath.Join(dir, "state"), "library")
	before := cache.CurrentHash(files)

	assert.NotEqual(t, before, cache.CurrentHash(files[:1]), "file count is mixed in")

	later := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(files[0], later, later))
	assert.NotEqual(t, before, cache.CurrentHash(files))

	missing := append([]string{filepath.Join(dir, "gone.cpp")}, files...)
	withMissing := cache.CurrentHash(missing)
	assert.NotEqual(t, cache.CurrentHash(files), withMissing)
	assert.Equal(t, withMissing, cache.CurrentHash(missing))
}

func TestCache_MarkSuccessAndIsValid(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp", "b.cpp")
	stateDir := filepath.Join(dir, "state")
	fixed := time.Unix(1700000000, 0)
	cache := statecache.New(stateDir, "library", statecache.WithClock(func() time.Time { return fixed }))

	valid, err := cache.IsValid(files)
	require.NoError(t, err)
	assert.False(t, valid)

	ok, err := cache.MarkSuccess(files)
	require.NoError(t, err)
	assert.True(t, ok)

	valid, err = cache.IsValid(files)
	require.NoError(t, err)
	assert.True(t, valid)

	data, err := os.ReadFile(filepath.Join(stateDir, "library"+domain.StateRecordExt))
	require.NoError(t, err)
	var rec domain.AtomicCacheRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "library", rec.Subject)
	assert.Equal(t, 2, rec.FileCount)
	assert.InDelta(t, 1700000000.0, rec.Timestamp, 1e-6)
	assert.Equal(t, cache.CurrentHash(files), rec.Hash)
	assert.FileExists(t, filepath.Join(stateDir, "library"+domain.StateLockExt))

	later := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(files[1], later, later))
	valid, err = cache.IsValid(files)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCache_CASOrdering(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp")
	stateDir := filepath.Join(dir, "state")
	processA := statecache.New(stateDir, "library")
	processB := statecache.New(stateDir, "library")

	snapA := processA.Snapshot(files)

	later := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(files[0], later, later))
	snapB := processB.Snapshot(files)
	require.NotEqual(t, snapA.Hash, snapB.Hash)

	ok, err := processB.Commit(snapB)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = processA.Commit(snapA)
	require.NoError(t, err)
	assert.False(t, ok, "the slower writer must not clobber newer state")

	rec, err := processA.Record()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, snapB.Hash, rec.Hash)
}

func TestCache_CommitSameHashIsAccepted(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp")
	cache := statecache.New(filepath.Join(dir, "state"), "pch")

	ok, err := cache.MarkSuccess(files)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.MarkSuccess(files)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp")
	cache := statecache.New(filepath.Join(dir, "state"), "library")

	require.NoError(t, cache.Invalidate(), "invalidating an absent record is fine")

	_, err := cache.MarkSuccess(files)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate())

	rec, err := cache.Record()
	require.NoError(t, err)
	assert.Nil(t, rec)

	later := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(files[0], later, later))
	ok, err := cache.MarkSuccess(files)
	require.NoError(t, err)
	assert.True(t, ok, "a new state can be committed after invalidation")
}

func TestCache_CorruptRecordTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp")
	stateDir := filepath.Join(dir, "state")
	require.NoError(t, os.MkdirAll(stateDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "library"+domain.StateRecordExt), []byte("{"), 0o600))

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).MinTimes(1)

	cache := statecache.New(stateDir, "library", statecache.WithLogger(logger))

	valid, err := cache.IsValid(files)
	require.NoError(t, err)
	assert.False(t, valid)

	ok, err := cache.MarkSuccess(files)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_NamespacesAreIndependent(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp")
	stateDir := filepath.Join(dir, "state")
	lib := statecache.New(stateDir, "library")
	pch := statecache.New(stateDir, "pch")

	_, err := lib.MarkSuccess(files)
	require.NoError(t, err)

	valid, err := pch.IsValid(files)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, "pch", pch.Subject())
}

func TestCache_ConcurrentWritersConverge(t *testing.T) {
	t.Parallel()

	dir, files := setupFiles(t, "a.cpp", "b.cpp")
	stateDir := filepath.Join(dir, "state")

	const writers = 8
	results := make([]bool, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := statecache.New(stateDir, "library").MarkSuccess(files)
			assert.NoError(t, err)
			results[i] = ok
		}()
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok, "writers observing the same state never reject each other")
	}

	valid, err := statecache.New(stateDir, "library").IsValid(files)
	require.NoError(t, err)
	assert.True(t, valid)
}
